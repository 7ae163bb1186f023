package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Paint3D/internal/config"
	"Paint3D/internal/gallery"
	"Paint3D/internal/geom"
	"Paint3D/internal/logging"
	sharenet "Paint3D/internal/net"
	"Paint3D/internal/state"
	"Paint3D/internal/storage"
	"Paint3D/internal/ui"
)

const appID = "io.paint3d.app"

var (
	// Global flags
	cfgPath   string
	verbose   bool
	ephemeral bool

	// Painter flags
	share bool

	// Discover flags
	discoverTimeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd opens the painter
var rootCmd = &cobra.Command{
	Use:   "paint3d",
	Short: "Paint 3D - draw strokes on a plane in 3D space",
	Long: `Paint 3D lets you draw freehand strokes on a horizontal sheet viewed
through an orbit camera, and keep them as saved works.

Left button draws, right button orbits, the wheel zooms.
Run with --share to stream the canvas to viewers on the local network.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if ephemeral {
			cfg.Storage.Backend = "memory"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", cfgPath, err)
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runPainter,
}

// viewCmd follows someone else's canvas
var viewCmd = &cobra.Command{
	Use:   "view <link>",
	Short: "Watch a shared canvas",
	Long: `Connects to a canvas shared with --share and mirrors it live.

The link is the paint3d://host:port address shown by the painter,
or a bare host:port.`,
	Args: cobra.ExactArgs(1),
	RunE: runViewer,
}

// discoverCmd lists shares on the local network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find shared canvases on the local network",
	Args:  cobra.NoArgs,
	RunE:  runDiscover,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep saved works in memory only")

	rootCmd.Flags().BoolVar(&share, "share", false, "Share the canvas on the local network")
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 3*time.Second, "How long to listen for shares")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(worksCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCamera() *geom.OrbitCamera {
	c := cfg.Camera
	return geom.NewOrbitCamera(geom.V(c.Position[0], c.Position[1], c.Position[2]), geom.Vec3{},
		c.FOV, c.MinDistance, c.MaxDistance)
}

func captureOptions() state.CaptureOptions {
	d := cfg.Drawing
	return state.CaptureOptions{
		Plane:       geom.HorizontalPlane(d.PlaneHeight),
		MinDistance: d.MinPointDistance,
		Color:       d.DefaultColor,
		Width:       d.DefaultWidth,
		MinWidth:    d.MinWidth,
		MaxWidth:    d.MaxWidth,
	}
}

func openGallery() (*gallery.Gallery, storage.KV, error) {
	kv, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return gallery.Open(kv, cfg.Storage.Key, logger), kv, nil
}

// withSignals returns a context that also ends on SIGINT or SIGTERM.
func withSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runPainter(cmd *cobra.Command, args []string) error {
	g, kv, err := openGallery()
	if err != nil {
		return err
	}
	defer kv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Works saved by another Paint 3D instance show up in the gallery.
	if fkv, ok := kv.(*storage.FileKV); ok {
		go func() {
			if err := fkv.Watch(ctx, cfg.Storage.Key, g.Reload); err != nil {
				logger.Warn("Not watching saved works", zap.Error(err))
			}
		}()
	}

	store := state.NewStore(logger)
	opts := ui.PainterOptions{
		Store:   store,
		Capture: state.NewCapture(store, captureOptions()),
		Camera:  newCamera(),
		Gallery: g,
		Logger:  logger,
	}

	var shareDone <-chan error
	if share || cfg.Share.Enabled {
		link, done, err := startShare(ctx, store)
		if err != nil {
			return err
		}
		opts.ShareLink = link
		shareDone = done
	}

	w := ui.NewPainter(app.NewWithID(appID), opts)
	closeOnSignal(ctx, w)
	logger.Info("Painter started", zap.Int("works", g.Len()), zap.Bool("sharing", opts.ShareLink != ""))
	w.ShowAndRun()

	cancel()
	if shareDone != nil {
		if err := <-shareDone; err != nil {
			logger.Warn("Share server stopped with error", zap.Error(err))
		}
	}
	return nil
}

// startShare serves store to viewers until ctx ends and returns the link to
// hand out. The channel yields the server's result once it has stopped.
func startShare(ctx context.Context, store *state.Store) (string, <-chan error, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Share.Port))
	if err != nil {
		return "", nil, fmt.Errorf("failed to start share server: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	hub := sharenet.NewHub(store, logger)
	done := make(chan error, 1)
	go func() { done <- sharenet.Serve(ctx, ln, hub, logger) }()

	if cfg.Share.Advertise {
		srv, err := sharenet.Advertise(port)
		if err != nil {
			logger.Warn("mDNS advertising failed", zap.Error(err))
		} else {
			go func() {
				<-ctx.Done()
				srv.Shutdown()
			}()
		}
	}

	ip, err := sharenet.OutgoingIP()
	if err != nil {
		logger.Warn("Could not find local IP", zap.Error(err))
		ip = "127.0.0.1"
	}
	link := sharenet.ShareLink(ip, port)
	logger.Info("Sharing canvas", zap.String("link", link))
	return link, done, nil
}

// closeOnSignal closes w when the process is interrupted.
func closeOnSignal(ctx context.Context, w *ui.Window) {
	sctx, stop := withSignals(ctx)
	go func() {
		defer stop()
		<-sctx.Done()
		if ctx.Err() == nil {
			logger.Info("Received shutdown signal")
			w.Close()
		}
	}()
}

func runViewer(cmd *cobra.Command, args []string) error {
	url, err := sharenet.ParseShareLink(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := state.NewStore(logger)
	w := ui.NewViewer(app.NewWithID(appID), store, newCamera(), args[0])
	closeOnSignal(ctx, w)

	// The host's first op is its snapshot.
	var connected sync.Once
	unsubscribe := store.Subscribe(func(state.Op) {
		connected.Do(func() { w.SetStatus("Viewing " + args[0]) })
	})
	defer unsubscribe()

	go func() {
		err := sharenet.Follow(ctx, url, store, logger)
		switch {
		case err == nil:
		case errors.Is(err, sharenet.ErrShareEnded):
			w.SetStatus("The host stopped sharing")
		default:
			logger.Warn("Lost share", zap.Error(err))
			w.SetStatus("Disconnected: " + err.Error())
		}
	}()

	w.ShowAndRun()
	return nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx, cancel := withSignals(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	found := 0
	err := sharenet.Browse(ctx, discoverTimeout, func(s sharenet.Share) {
		found++
		fmt.Fprintf(out, "%s\t%s%s\n", s.Instance, sharenet.LinkScheme, s.Addr)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("discovery failed: %w", err)
	}
	if found == 0 {
		fmt.Fprintln(out, "No shared canvases found.")
	}
	return nil
}
