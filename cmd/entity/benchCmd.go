package entity

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/keydex/keydex/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	benchCmd = &cobra.Command{
		Use:     "bench [keyspace]",
		Short:   "Load testing tool for keydex servers",
		Args:    cobra.ExactArgs(1),
		RunE:    runBench,
		PreRunE: processBenchConfig,
	}
	benchWorkers  = 10
	benchDuration = 10 * time.Second
	benchRate     = 0
	benchCleanup  = true
)

func init() {
	// add flags
	key := "workers"
	benchCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers"))
	key = "duration"
	benchCmd.Flags().Duration(key, 10*time.Second, util.WrapString("How long to run the benchmark"))
	key = "rate"
	benchCmd.Flags().Int(key, 0, util.WrapString("Maximum puts per second across all workers (0 means unlimited)"))
	key = "cleanup"
	benchCmd.Flags().Bool(key, true, util.WrapString("Drop the benchmark keyspace when done"))

	EntityCommands.AddCommand(benchCmd)
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	benchWorkers = viper.GetInt("workers")
	benchDuration = viper.GetDuration("duration")
	benchRate = viper.GetInt("rate")
	benchCleanup = viper.GetBool("cleanup")

	return nil
}

func runBench(_ *cobra.Command, args []string) error {
	ks := args[0]
	adapter := adapterFor(ks)

	fmt.Println("Load testing tool for keydex servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Keyspace: %s\n", ks)
	fmt.Printf("Workers:  %d\n", benchWorkers)
	fmt.Printf("Duration: %s\n", benchDuration)
	if benchRate > 0 {
		fmt.Printf("Rate:     %d puts/sec\n", benchRate)
	}
	fmt.Println()

	// unlimited by default
	limiter := rate.NewLimiter(rate.Inf, 1)
	if benchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(benchRate), benchWorkers)
	}

	ctx, cancel := context.WithTimeout(context.Background(), benchDuration)
	defer cancel()

	var (
		puts   atomic.Int64
		errors atomic.Int64
	)

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < benchWorkers; i++ {
		worker := i
		g.Go(func() error {
			entity := map[string]any{
				"worker":  fmt.Sprintf("worker-%d", worker),
				"payload": uuid.NewString(),
			}
			for {
				if err := limiter.Wait(ctx); err != nil {
					return nil // deadline reached
				}
				if err := adapter.Put(uuid.NewString(), entity, ks); err != nil {
					errors.Add(1)
					continue
				}
				puts.Add(1)
			}
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	// Print results
	total := puts.Load()
	fmt.Printf("puts:       %d\n", total)
	fmt.Printf("errors:     %d\n", errors.Load())
	fmt.Printf("elapsed:    %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("throughput: %.0f puts/sec\n", float64(total)/elapsed.Seconds())

	if benchCleanup {
		fmt.Println("cleaning up...")
		return adapter.DeleteAllOf(ks)
	}
	return nil
}
