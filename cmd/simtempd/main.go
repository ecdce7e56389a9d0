// Command simtempd runs a standalone virtual temperature sensor: it
// opens one simtemp device, exposes its control attributes and record
// stream over HTTP, and serves Prometheus metrics, until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	simtemp "github.com/PyCharmGuy123/simtemp"
	"github.com/PyCharmGuy123/simtemp/internal/errkind"
	"github.com/PyCharmGuy123/simtemp/internal/logging"
	"github.com/PyCharmGuy123/simtemp/internal/wire"
	"github.com/PyCharmGuy123/simtemp/metricsprom"
)

func main() {
	var (
		samplingMs  = flag.Uint("sampling-ms", uint(simtemp.DefaultSamplingMs), "Sample period in milliseconds")
		thresholdMC = flag.Int("threshold-mC", int(simtemp.DefaultThresholdMC), "Alert threshold in milli-degrees Celsius")
		mode        = flag.String("mode", "normal", "Synthesis mode: normal, ramp, or noisy")
		debug       = flag.Bool("debug", false, "Verbose logging")
		httpAddr    = flag.String("http", ":8089", "Address to serve the control/metrics HTTP surface on")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *debug {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	observer := metricsprom.New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev, err := simtemp.Open(ctx, simtemp.Params{
		SamplingMs:  uint32(*samplingMs),
		ThresholdMC: int32(*thresholdMC),
		Mode:        *mode,
	}, &simtemp.Options{Observer: observer})
	if err != nil {
		logger.Error("failed to open device", "error", err)
		os.Exit(1)
	}

	logger.Info("device opened", "sampling_ms", *samplingMs, "threshold_mC", *thresholdMC, "mode", *mode)

	mux := http.NewServeMux()
	mux.Handle("/metrics", observer.Handler())
	mux.HandleFunc("/attrs/", attrsHandler(dev))
	mux.HandleFunc("/stream", streamHandler(dev))

	server := &http.Server{Addr: *httpAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("serving control surface", "addr", *httpAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", "error", err)
		}
	}()

	fmt.Printf("simtempd running, sampling every %dms\n", *samplingMs)
	fmt.Printf("  GET/PUT http://%s/attrs/<name>\n", *httpAddr)
	fmt.Printf("  GET     http://%s/stream\n", *httpAddr)
	fmt.Printf("  GET     http://%s/metrics\n", *httpAddr)
	fmt.Printf("Press Ctrl+C to stop...\n")
	fmt.Printf("Send SIGUSR1 (kill -USR1 %d) to dump goroutine stacks\n", os.Getpid())

	stackDumpCh := make(chan os.Signal, 1)
	signal.Notify(stackDumpCh, syscall.SIGUSR1)
	go func() {
		for range stackDumpCh {
			buf := make([]byte, 1024*1024)
			n := runtime.Stack(buf, true)
			fmt.Fprintf(os.Stderr, "\n=== GOROUTINE STACK DUMP ===\n%s\n", buf[:n])
			pprof.Lookup("goroutine").WriteTo(os.Stderr, 2)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	if err := dev.Close(context.Background()); err != nil {
		logger.Error("error closing device", "error", err)
		os.Exit(1)
	}
	logger.Info("device closed")
}

// attrsHandler serves GET (show) and PUT (store) against a single
// named control attribute, e.g. GET /attrs/sampling_ms.
func attrsHandler(dev *simtemp.Device) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/attrs/"):]
		attr, ok := dev.Attrs().Lookup(name)
		if !ok {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			v, err := attr.Show()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			io.WriteString(w, v)
		case http.MethodPut:
			if attr.ReadOnly() {
				http.Error(w, "attribute is read-only", http.StatusMethodNotAllowed)
				return
			}
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if err := attr.Store(string(body)); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.Header().Set("Allow", "GET, PUT")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// streamHandler performs one non-blocking read of the record stream
// and writes it as a raw 16-byte body, or 204 if nothing is queued.
func streamHandler(dev *simtemp.Device) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := dev.OpenStream(true)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		defer dev.CloseStream(h)

		buf := make([]byte, wire.Size)
		n, err := dev.Read(r.Context(), h, buf)
		if err != nil {
			if simtemp.IsKind(err, errkind.Again) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(buf[:n])
	}
}
