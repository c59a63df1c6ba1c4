package cli

import (
	"fmt"

	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/infra/file"
	pgstore "timed-quiz-service/internal/infra/postgres"

	"github.com/spf13/cobra"
)

// NewSeedCmd loads question banks from YAML into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var bankFile string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert question banks from a YAML file (or the built-in bank) into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := config.NewLogger(cfg)
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}

			if bankFile == "" {
				bankFile = cfg.Bank.File
			}
			loader := file.Default()
			if bankFile != "" {
				if loader, err = file.Load(bankFile); err != nil {
					return err
				}
			}

			db := pgstore.OpenBun(cfg.Postgres.URL)
			defer db.Close()
			writer := pgstore.NewBankWriter(db)
			for _, bank := range loader.Banks() {
				if err := writer.Upsert(cmd.Context(), bank); err != nil {
					return err
				}
				log.WithField("quiz_id", bank.ID).WithField("questions", bank.Len()).Info("bank seeded")
			}

			stored, err := writer.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range stored {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.ID, s.Title, s.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bankFile, "file", "", "YAML bank file (defaults to bank.file, then the built-in bank)")
	return cmd
}
