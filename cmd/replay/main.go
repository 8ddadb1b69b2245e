// replay считает позиции по истории сделок из yaml/json файла, без БД и сети.
//
//	go run ./cmd/replay -file fills.yaml -asset 123 -asset 456
//	go run ./cmd/replay -file fills.json -clob https://clob.polymarket.com
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	"trade_ledger/internal/modules/clob/service"
	"trade_ledger/internal/modules/config"
	ledgersvc "trade_ledger/internal/modules/ledger/service"
	"trade_ledger/pkg/logger"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

type assetFlags []string

func (a *assetFlags) String() string { return strings.Join(*a, ",") }

func (a *assetFlags) Set(v string) error {
	*a = append(*a, v)
	return nil
}

func main() {
	var (
		file     = flag.String("file", "", "yaml/json файл со сделками (trades) и котировками (quotes)")
		clobURL  = flag.String("clob", "", "брать котировки из CLOB вместо файла")
		limit    = flag.Int("limit", 0, "максимум сделок (0 = из конфига)")
		noPrices = flag.Bool("no-prices", false, "не считать unrealized")
		verbose  = flag.Bool("v", false, "debug-логи")
		assets   assetFlags
	)
	flag.Var(&assets, "asset", "asset id для фильтра, можно несколько раз")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -file fills.yaml [-asset id] [-clob url]")
		os.Exit(2)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger.SetServiceName("replay")
	log, err := logger.New(level, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	src, err := ledgersvc.LoadFileSource(*file)
	if err != nil {
		logger.Fatal("load %s: %v", *file, err)
	}

	cfg := config.Default()
	svc := ledgersvc.NewService(cfg, log)

	opts := svc.Defaults()
	opts.AssetIDs = assets
	opts.IncludePrices = !*noPrices
	if *limit > 0 {
		opts.MaxFills = *limit
	}

	var prices ledgersvc.PriceSource = src
	if *clobURL != "" {
		prices = service.NewClient(*clobURL, cfg.Clob.Timeout, log)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	snap, err := svc.Snapshot(ctx, src, prices, opts)
	if err != nil {
		logger.Fatal("compute positions: %v", err)
	}
	log.Debug("replay done", zap.Any("stats", snap.Stats))

	out, err := sonic.ConfigStd.MarshalIndent(snap, "", "  ")
	if err != nil {
		logger.Fatal("marshal: %v", err)
	}
	fmt.Println(string(out))
}
