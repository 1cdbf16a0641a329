package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eunjilab/saju-admin/internal/model"
)

// orderFile is the on-disk payload for generate and batch, same shape
// as the HTTP trigger body: the order code, the nested customer record,
// and an optional prompt blob.
type orderFile struct {
	OrderCode string         `json:"orderCode"`
	Customer  model.Customer `json:"customer"`
	Prompt    string         `json:"prompt,omitempty"`
}

func readOrderFile(path string) (*orderFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read order file %s", path)
	}
	var o orderFile
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, eris.Wrapf(err, "parse order file %s", path)
	}
	if o.OrderCode == "" {
		return nil, eris.Errorf("order file %s: orderCode is required", path)
	}
	return &o, nil
}

var generateCmd = &cobra.Command{
	Use:   "generate <order.json>",
	Short: "Generate a report for a single order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		order, err := readOrderFile(args[0])
		if err != nil {
			return err
		}

		result, err := env.Pipeline.Run(ctx, order.OrderCode, order.Customer, order.Prompt)
		if err != nil {
			return eris.Wrapf(err, "generate %s", order.OrderCode)
		}

		fmt.Printf("완료: %s (%d자, 오류 %d건, 자동수정 %d건)\n",
			order.OrderCode,
			len([]rune(result.Document)),
			result.VerifySummary.TotalErrors,
			result.VerifySummary.AutoFixed,
		)
		return nil
	},
}

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <orders.json>",
	Short: "Generate reports for multiple orders concurrently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read batch file %s", args[0])
		}
		var orders []orderFile
		if err := json.Unmarshal(data, &orders); err != nil {
			return eris.Wrapf(err, "parse batch file %s", args[0])
		}
		if len(orders) == 0 {
			zap.L().Info("batch file contains no orders")
			return nil
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Pipeline.MaxConcurrentRuns
		}

		zap.L().Info("processing batch",
			zap.Int("orders", len(orders)),
			zap.Int("concurrency", concurrency),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		var succeeded, failed atomic.Int64

		for _, order := range orders {
			g.Go(func() error {
				log := zap.L().With(zap.String("orderCode", order.OrderCode))

				if order.OrderCode == "" {
					failed.Add(1)
					log.Error("batch entry missing orderCode")
					return nil
				}

				if _, err := env.Pipeline.Run(gctx, order.OrderCode, order.Customer, order.Prompt); err != nil {
					failed.Add(1)
					log.Error("generation failed", zap.Error(err))
					return nil // don't abort batch on individual failure
				}
				succeeded.Add(1)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch")
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
		)
		if failed.Load() > 0 {
			return eris.Errorf("batch: %d of %d orders failed", failed.Load(), len(orders))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent runs (default from config)")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(batchCmd)
}
