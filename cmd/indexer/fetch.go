package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"predictionScope/internal/model"
	"predictionScope/internal/storage"
)

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx, stop, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer stop()
	defer a.Close()

	logs, err := a.fetch(ctx)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	sink := storage.NewJsonlStorage(out)
	if err := sink.Truncate(); err != nil {
		return err
	}
	if err := sink.PutLogs(logs); err != nil {
		return err
	}

	snap := a.store.Snapshot()
	a.logger.Info("fetch complete",
		zap.Int("logs", len(logs)),
		zap.String("out", sink.Path()),
		zap.String("fingerprint", snap.Fingerprint.Hex()),
	)

	counts := make(map[model.Network]map[model.EventName]int)
	for _, log := range logs {
		if counts[log.Network] == nil {
			counts[log.Network] = make(map[model.EventName]int)
		}
		counts[log.Network][log.EventName]++
	}
	w := cmd.OutOrStdout()
	for _, network := range model.Networks {
		if netErr, failed := snap.NetworkErrors[network]; failed {
			fmt.Fprintf(w, "%s\tfailed: %v\n", network, netErr)
			continue
		}
		events := counts[network]
		names := make([]string, 0, len(events))
		total := 0
		for name, n := range events {
			names = append(names, string(name))
			total += n
		}
		sort.Strings(names)
		fmt.Fprintf(w, "%s\t%d logs\n", network, total)
		for _, name := range names {
			fmt.Fprintf(w, "  %s\t%d\n", name, events[model.EventName(name)])
		}
	}
	return nil
}
