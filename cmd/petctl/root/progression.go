package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/ui"
)

func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Look around for resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			if !s.ShouldDiscover(ctx) {
				st := s.DiscoverySettings(ctx)
				fmt.Fprintln(w, ui.Muted.Render(fmt.Sprintf(
					"Nothing to find yet (%d/%d today, every %.1fh).", st.DailyCount, st.MaxPerDay, st.IntervalHours)))
				return nil
			}

			out := s.Discover(ctx)
			if len(out.Records) == 0 {
				fmt.Fprintln(w, ui.Muted.Render("You looked around but found nothing."))
				return nil
			}
			fmt.Fprintln(w, ui.Heading(ui.IconCompass, "Discoveries"))
			for _, r := range out.Records {
				fmt.Fprintf(w, "- %dx %s [%s] %s\n", r.Quantity, r.ResourceID, ui.RarityText(r.Rarity), ui.Muted.Render(r.Message))
			}
			for _, a := range out.Unlocked {
				fmt.Fprintf(w, "%s %s %s\n", ui.IconTrophy, ui.Gold.Render("Achievement unlocked:"), a.Title)
			}
			for _, m := range out.MissionsReady {
				fmt.Fprintf(w, "%s %s %s\n", ui.IconGift, ui.Good.Render("Mission ready:"), m.Title)
			}
			return nil
		},
	}
}

func newMissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missions",
		Short: "List daily, weekly and season missions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconScroll, "Missions"))
			var scope domain.MissionScope
			for _, m := range s.Missions(context.Background()) {
				if m.Scope != scope {
					scope = m.Scope
					fmt.Fprintln(w, ui.H2.Render(strings.ToUpper(string(scope[:1]))+string(scope[1:])))
				}
				state := ui.Bar(m.Progress, m.Requirement.Target, 10) + fmt.Sprintf(" %d/%d", m.Progress, m.Requirement.Target)
				if m.Completed {
					state = ui.Good.Render("claimed")
				}
				fmt.Fprintf(w, "- %s %s %s\n", ui.Key.Render(m.ID), m.Title, state)
			}
			return nil
		},
	}
}

func newClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <mission>",
		Short: "Claim a finished mission's rewards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			res := s.CompleteMission(context.Background(), args[0])
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Outcome(res.Result))
			if !res.Success {
				return nil
			}
			fmt.Fprintln(w, ui.LabelValue("Star fragments", fmt.Sprintf("+%d", res.StarFragments)))
			fmt.Fprintln(w, ui.LabelValue("Experience", fmt.Sprintf("+%d", res.Experience)))
			if res.LevelAfter > res.LevelBefore {
				fmt.Fprintf(w, "%s level %d %s\n", ui.BadgeLevelUp, res.LevelAfter, ui.Muted.Render(fmt.Sprintf("(+%d bonus)", res.LevelUpBonus)))
			}
			return nil
		},
	}
}

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconTrophy, "Achievements"))
			for _, a := range s.Achievements(context.Background()) {
				mark := ui.Bar(a.Progress, a.Requirement.Target, 10) + fmt.Sprintf(" %d/%d", a.Progress, a.Requirement.Target)
				if a.Completed {
					mark = ui.Gold.Render(ui.IconStar + " done")
				}
				fmt.Fprintf(w, "- %s %s %s\n", a.Title, ui.Muted.Render("("+string(a.Category)+")"), mark)
			}
			return nil
		},
	}
}

func newBalanceCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show star fragments and recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			ledger := s.Ledger(context.Background())
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconCoin, "Star fragments"))
			fmt.Fprintln(w, ui.LabelValue("Balance", ledger.Balance))
			fmt.Fprintln(w, ui.LabelValue("Total earned", ledger.TotalEarned))

			txs := ledger.Transactions
			if len(txs) > limit {
				txs = txs[len(txs)-limit:]
			}
			for i := len(txs) - 1; i >= 0; i-- {
				tx := txs[i]
				amount := ui.Good.Render(fmt.Sprintf("+%d", tx.Amount))
				if tx.Type == domain.TransactionSpent {
					amount = ui.Bad.Render(fmt.Sprintf("-%d", tx.Amount))
				}
				fmt.Fprintf(w, "- %s %s %s\n", amount, tx.Description, ui.Muted.Render(tx.Timestamp.Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Transactions to show")
	return cmd
}

func newSpendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spend <amount> [description]",
		Short: "Spend star fragments",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("amount is required")
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return domain.ErrInvalidAmount
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			amount, _ := strconv.Atoi(args[0])
			desc := strings.Join(args[1:], " ")
			if desc == "" {
				desc = "Shop purchase"
			}
			res := s.Spend(context.Background(), amount, desc)
			fmt.Fprintln(cmd.OutOrStdout(), ui.Outcome(res.Result))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Balance", res.Balance))
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Claim today's login bonus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			res := s.ClaimDailyLogin(context.Background())
			fmt.Fprintln(cmd.OutOrStdout(), ui.Outcome(res.Result))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Balance", res.Balance))
			return nil
		},
	}
}
