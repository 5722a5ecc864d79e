package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"predictionScope/internal/model"
	"predictionScope/internal/storage"
)

func runActivity(cmd *cobra.Command, _ []string) error {
	ctx, stop, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer stop()
	defer a.Close()

	if _, err := a.fetch(ctx); err != nil {
		return err
	}

	var activities []model.UserActivity
	if a.cfg.User != "" {
		activities = a.processor.UserActivities(ctx, a.cfg.User)
	} else {
		activities = a.processor.ProcessUserActivities(ctx)
	}

	out, _ := cmd.Flags().GetString("out")
	sink := storage.NewJsonlStorage(out)
	if err := sink.Truncate(); err != nil {
		return err
	}
	if err := sink.PutActivities(activities); err != nil {
		return err
	}

	byType := make(map[model.ActivityType]int)
	for _, act := range activities {
		byType[act.Type]++
	}
	a.logger.Info("activities written",
		zap.Int("activities", len(activities)),
		zap.String("user", a.cfg.User),
		zap.String("out", sink.Path()),
	)

	w := cmd.OutOrStdout()
	for _, kind := range []model.ActivityType{
		model.ActivityMarketCreated,
		model.ActivitySharesBought,
		model.ActivityMarketResolved,
		model.ActivityWinningsClaimed,
	} {
		fmt.Fprintf(w, "%s\t%d\n", kind, byType[kind])
	}
	return nil
}
