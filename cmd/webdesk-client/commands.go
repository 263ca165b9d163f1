package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chess10kp/webdesk/internal/bridge"
	"github.com/chess10kp/webdesk/internal/power"
)

type sendFunc func(msg []byte) error

func newRootCmd(send sendFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "webdesk-client",
		Short:         "Send bridge actions to a running webdesk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// The launched command's own flags must reach it untouched.
	launch := actionCmd(send, "launch <command...>", "Launch a command through the shell", bridge.ActionLaunchApp, cobra.MinimumNArgs(1))
	launch.DisableFlagParsing = true

	root.AddCommand(
		newSendCmd(send),
		launch,
		actionCmd(send, "focus <app>", "Focus the first window whose class matches", bridge.ActionFocusApp, cobra.ExactArgs(1)),
		newPowerCmd(send),
		actionCmd(send, "search <query...>", "Push fuzzy search results to the page", bridge.ActionSearchApps, cobra.ArbitraryArgs),
		actionCmd(send, "dock", "Push the dock listing to the page", bridge.ActionGetDockApps, cobra.NoArgs),
		actionCmd(send, "wallpaper", "Open the wallpaper picker", bridge.ActionOpenBackgroundPicker, cobra.NoArgs),
		actionCmd(send, "running", "Push running-app indicators to the page", bridge.ActionGetRunningApps, cobra.NoArgs),
	)
	return root
}

// newSendCmd forwards a raw JSON message.
func newSendCmd(send sendFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "send <json>",
		Short: "Send a raw bridge message",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			raw := []byte(args[0])
			if !json.Valid(raw) {
				return fmt.Errorf("message is not valid JSON")
			}
			return send(raw)
		},
	}
}

func newPowerCmd(send sendFunc) *cobra.Command {
	var names []string
	for _, c := range power.Commands() {
		names = append(names, c.String())
	}

	return &cobra.Command{
		Use:       "power <" + strings.Join(names, "|") + ">",
		Short:     "Run a power command",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(_ *cobra.Command, args []string) error {
			if _, ok := power.ParseCommand(args[0]); !ok {
				return fmt.Errorf("unknown power command %q (must be one of: %s)", args[0], strings.Join(names, ", "))
			}
			return sendAction(send, bridge.ActionPowerCommand, args[0])
		},
	}
}

func actionCmd(send sendFunc, use, short string, action bridge.Action, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(_ *cobra.Command, args []string) error {
			return sendAction(send, action, strings.Join(args, " "))
		},
	}
}

func sendAction(send sendFunc, action bridge.Action, command string) error {
	data, err := bridge.NewMessage(action, command).ToJSON()
	if err != nil {
		return err
	}
	return send(data)
}
