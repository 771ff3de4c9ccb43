package cmd

import (
	"fmt"

	"medichat/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cardsCmd = &cobra.Command{
	Use:   "cards [card_id]",
	Short: "List the card catalog or show a single card",
	Long: `Cards prints every service and strength card with its catalog id, or the
full details of one card.

Examples:
  medichat cards
  medichat cards 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		kb, err := loadKnowledgeBase(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			card, err := kb.Card(args[0])
			if err != nil {
				return fmt.Errorf("error getting card: %w", err)
			}
			printCard(out, card)
			return nil
		}

		id := color.New(color.Faint)
		for _, cardID := range kb.CardIDs() {
			card, err := kb.Card(cardID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s  %s %s  %s\n", id.Sprintf("%2s", cardID), card.Icon, card.Title, id.Sprint(card.Type))
		}
		return nil
	},
}
