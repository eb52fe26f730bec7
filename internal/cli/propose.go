package cli

import (
	"github.com/spf13/cobra"

	"github.com/opsconsole/bluegreen-manager/pkg/orchestrator"
)

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Propose a change to the values file as a pull request",
}

var (
	versionSlot       string
	versionToSet      string
	flipTurnOffSwitch bool
	switchSlot        string
	switchState       string
)

var proposeVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Bump one slot's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, _, err := newOrchestrator()
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		slot := versionSlot
		// "active" and "standby" are resolved against the live document so
		// operators do not need to know which colour that currently is.
		if picker := orchestrator.TargetPicker(slot); picker == orchestrator.PickActive || picker == orchestrator.PickStandby {
			resolved, err := o.ResolveTarget(ctx, picker)
			if err != nil {
				return err
			}
			slot = string(resolved)
		}

		proposal, err := o.Propose(ctx, orchestrator.VersionUpdate{
			Slot:    slot,
			Version: versionToSet,
		})
		if err != nil {
			return err
		}

		printProposal(proposal)
		return nil
	},
}

var proposeFlipCmd = &cobra.Command{
	Use:   "flip",
	Short: "Flip the active slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, _, err := newOrchestrator()
		if err != nil {
			return err
		}

		proposal, err := o.Propose(cmd.Context(), orchestrator.AutoFlip{
			TurnOffStandbySwitch: flipTurnOffSwitch,
		})
		if err != nil {
			return err
		}

		printProposal(proposal)
		return nil
	},
}

var proposeSwitchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Turn one slot's switch on or off",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, _, err := newOrchestrator()
		if err != nil {
			return err
		}

		proposal, err := o.Propose(cmd.Context(), orchestrator.SwitchToggle{
			Slot:  switchSlot,
			State: switchState,
		})
		if err != nil {
			return err
		}

		printProposal(proposal)
		return nil
	},
}

func init() {
	proposeVersionCmd.Flags().StringVar(&versionSlot, "slot", "standby", "target slot: blue, green, active or standby")
	proposeVersionCmd.Flags().StringVar(&versionToSet, "version", "", "version to set")
	proposeVersionCmd.MarkFlagRequired("version")

	proposeFlipCmd.Flags().BoolVar(&flipTurnOffSwitch, "turn-off-standby-switch", false, "turn the newly-standby slot's switch off after the flip")

	proposeSwitchCmd.Flags().StringVar(&switchSlot, "slot", "", "slot: blue or green")
	proposeSwitchCmd.Flags().StringVar(&switchState, "state", "", "switch state: on or off")
	proposeSwitchCmd.MarkFlagRequired("slot")
	proposeSwitchCmd.MarkFlagRequired("state")

	proposeCmd.AddCommand(proposeVersionCmd, proposeFlipCmd, proposeSwitchCmd)
	rootCmd.AddCommand(proposeCmd)
}
