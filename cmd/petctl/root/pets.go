package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/service"
	"github.com/pet-progression/internal/ui"
)

func newAdoptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adopt <pet>",
		Short: "Adopt a new pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			res := s.AdoptPet(context.Background(), args[0])
			fmt.Fprintln(cmd.OutOrStdout(), ui.Outcome(res))
			return nil
		},
	}
}

func newActionCmds() []*cobra.Command {
	short := map[domain.ActionType]string{
		domain.ActionFeed:  "Feed a pet",
		domain.ActionSleep: "Put a pet to sleep",
		domain.ActionPlay:  "Play with a pet",
		domain.ActionChat:  "Chat with a pet",
	}

	var cmds []*cobra.Command
	for _, action := range []domain.ActionType{domain.ActionFeed, domain.ActionSleep, domain.ActionPlay, domain.ActionChat} {
		var boost int
		var goal bool
		cmd := &cobra.Command{
			Use:   string(action) + " <pet>",
			Short: short[action],
			Args: func(cmd *cobra.Command, args []string) error {
				if len(args) != 1 {
					return errors.New("pet is required")
				}
				return nil
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				s, cleanup, err := openSession()
				if err != nil {
					return err
				}
				defer cleanup()

				out := s.RecordAction(context.Background(), service.ActionRequest{
					PetID:        args[0],
					Action:       action,
					StatBoost:    boost,
					AchievedGoal: goal,
				})
				printActionOutcome(cmd, out)
				return nil
			},
		}
		cmd.Flags().IntVar(&boost, "boost", 1, "Stat boost applied by the action")
		cmd.Flags().BoolVar(&goal, "goal", false, "The action completed a goal (+50% points)")
		cmds = append(cmds, cmd)
	}
	return cmds
}

func printActionOutcome(cmd *cobra.Command, out service.ActionOutcome) {
	w := cmd.OutOrStdout()
	if !out.Success {
		fmt.Fprintln(w, ui.Outcome(out.Result))
		return
	}

	fmt.Fprintln(w, ui.Good.Render(fmt.Sprintf("%s %s: %s", ui.IconPaw, out.PetID, out.Action)))
	printPet(cmd, out.Stats)
	if out.Points != nil {
		fmt.Fprintln(w, ui.LabelValue("Points", ui.Gold.Render(out.Points.Description)))
	}
	for _, a := range out.Unlocked {
		fmt.Fprintf(w, "%s %s %s\n", ui.IconTrophy, ui.Gold.Render("Achievement unlocked:"), a.Title)
	}
	for _, m := range out.MissionsReady {
		fmt.Fprintf(w, "%s %s %s %s\n", ui.IconGift, ui.Good.Render("Mission ready:"), m.Title, ui.Muted.Render("(petctl claim "+m.ID+")"))
	}
}

func printPet(cmd *cobra.Command, st domain.PetStats) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  %s %s\n", ui.Key.Render(st.PetID), ui.MoodText(st.MoodState))
	fmt.Fprintf(w, "  mood   %s %d\n", ui.Bar(st.Mood, domain.MaxStat, 10), st.Mood)
	fmt.Fprintf(w, "  hunger %s %d\n", ui.Bar(st.Hunger, domain.MaxStat, 10), st.Hunger)
	fmt.Fprintf(w, "  energy %s %d\n", ui.Bar(st.Energy, domain.MaxStat, 10), st.Energy)
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [pet]",
		Short: "Show pets, points, level and balance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			if len(args) == 1 {
				st, ok := s.Stats(ctx, args[0])
				if !ok {
					return fmt.Errorf("%w: %s", domain.ErrPetNotFound, args[0])
				}
				printPet(cmd, st)
				return nil
			}

			progress := s.Progress(ctx)
			points := s.Points(ctx)
			fmt.Fprintln(w, ui.Heading(ui.IconSparkle, "Player "+s.PlayerID()))
			fmt.Fprintln(w, ui.LabelValue("Level", fmt.Sprintf("%d (%d xp)", progress.Level, progress.Experience)))
			fmt.Fprintln(w, ui.LabelValue("Points", fmt.Sprintf("%d total, %d today", points.TotalPoints, points.DailyPoints)))
			fmt.Fprintln(w, ui.LabelValue("Streak", fmt.Sprintf("%d days (best %d)", points.CurrentStreak, points.LongestStreak)))
			fmt.Fprintln(w, ui.LabelValue("Star fragments", s.Balance(ctx)))
			fmt.Fprintln(w)

			pets := s.AllStats(ctx)
			if len(pets) == 0 {
				fmt.Fprintln(w, ui.Muted.Render("No pets yet. Try: petctl adopt <name>"))
				return nil
			}
			fmt.Fprintln(w, ui.H2.Render(ui.IconPaw+" Pets"))
			for _, st := range pets {
				printPet(cmd, st)
			}
			return nil
		},
	}
}
