// loadgen drives a Dispatcher directly (bypassing HTTP) to measure raw
// matching throughput, the same shape as the teacher's single-book load
// generator scaled up to many markets behind the round-robin pool.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dsirotkin256/matchcore/engine"
	"github.com/dsirotkin256/matchcore/logging"
)

func main() {
	totalOrders := flag.Int("orders", 500000, "number of orders to submit")
	marketList := flag.String("markets", "SIM-A,SIM-B,SIM-C,SIM-D", "comma-separated markets to spread load across")
	workers := flag.Int("workers", 0, "consumer pool size, 0 = runtime.NumCPU()")
	priceLevels := flag.Int64("price-levels", 200, "unique price levels around the mid")
	tick := flag.Int64("tick", 1, "tick size for limit prices")
	basePrice := flag.Int64("base-price", 10000, "mid price used for randomization")
	cancelEvery := flag.Int("cancel-every", 0, "cancel a random resting order every N submissions")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed for deterministic random streams")
	cpuProfile := flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile := flag.String("memprofile", "", "write heap profile to file")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	markets := strings.Split(*marketList, ",")

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()
	}

	logger := logging.New()
	dispatcher := engine.NewDispatcher(markets, *workers, logger, engine.Hooks{})
	dispatcher.Start()

	var trades int64
	for _, market := range markets {
		hub, ok := dispatcher.TradesHub(market)
		if !ok {
			continue
		}
		sub := hub.Subscribe(1024)
		go func() {
			for range sub.C() {
				atomic.AddInt64(&trades, 1)
			}
		}()
	}

	start := time.Now()
	sent := make([]*engine.Order, 0, *totalOrders)
	for i := 0; i < *totalOrders; i++ {
		market := markets[i%len(markets)]
		order := nextRandomOrder(rng, i, market, *basePrice, *priceLevels, *tick)
		sent = append(sent, order)
		if _, err := dispatcher.Send(order); err != nil {
			fmt.Fprintf(os.Stderr, "submit failed: %v\n", err)
		}
		if *cancelEvery > 0 && i > 0 && i%*cancelEvery == 0 {
			target := sent[rng.Intn(i)]
			_, _ = dispatcher.Cancel(target.Market, target.ID, target.Side, target.Price)
		}
	}
	elapsed := time.Since(start)

	dispatcher.Shutdown()
	time.Sleep(50 * time.Millisecond)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err == nil {
			defer f.Close()
			_ = pprof.WriteHeapProfile(f)
		}
	}

	matched := atomic.LoadInt64(&trades)
	ordersPerSec := float64(*totalOrders) / elapsed.Seconds()
	tradesPerSec := float64(matched) / elapsed.Seconds()

	fmt.Printf("submitted %d orders across %d markets in %s (%.0f orders/s)\n", *totalOrders, len(markets), elapsed.Truncate(time.Millisecond), ordersPerSec)
	fmt.Printf("matched %d trades (%.0f trades/s)\n", matched, tradesPerSec)
}

func nextRandomOrder(rng *rand.Rand, id int, market string, mid, width, tick int64) *engine.Order {
	side := engine.Side(rng.Intn(2))
	var price int64
	if side == engine.Buy {
		price = mid + rng.Int63n(width)
	} else {
		offset := rng.Int63n(width)
		if mid > offset {
			price = mid - offset
		} else {
			price = tick
		}
	}

	qty := rng.Int63n(5) + 1

	order, err := engine.NewOrder("lg-"+strconv.Itoa(id), market, side, price, qty, time.Now())
	if err != nil {
		panic(err)
	}
	return order
}
