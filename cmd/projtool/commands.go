package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	gomath "math"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/projector-rig/internal/bridge"
	"github.com/Faultbox/projector-rig/internal/logger"
	"github.com/Faultbox/projector-rig/internal/pattern"
	"github.com/Faultbox/projector-rig/internal/preset"
	"github.com/Faultbox/projector-rig/internal/preview"
	"github.com/Faultbox/projector-rig/internal/projector"
	"github.com/Faultbox/projector-rig/pkg/math"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

func cmdResolutions(args []string) error {
	fs := flag.NewFlagSet("resolutions", flag.ExitOnError)
	if _, err := setup(fs, args); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%-3s %-10s %-8s %s\n", "#", "Token", "Aspect", "Label")
	for _, info := range projection.Resolutions {
		size := projection.MustParseResolution(info.Token)
		fmt.Fprintf(stdout, "%-3d %-10s %-8.4f %s\n", info.Ordinal, info.Token, size.Aspect(), info.Label)
	}
	return nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print derived values as JSON")
	sockets := fs.Bool("sockets", false, "Print the initial socket assignments instead")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}

	s, err := openSession(cfg, fs.Arg(0), projector.New)
	if err != nil {
		return err
	}
	params, d := s.proj.Snapshot()

	switch {
	case *sockets:
		return printJSON(s.update.Sockets())
	case *asJSON:
		return printJSON(struct {
			Name       string                `json:"name"`
			Parameters projection.Parameters `json:"parameters"`
			Derived    projector.Derived     `json:"derived"`
		}{s.preset.Name, params, d})
	}

	fmt.Fprintf(stdout, "Projector: %s\n", s.preset.Name)
	if s.preset.Path != "" {
		fmt.Fprintf(stdout, "Preset: %s\n", s.preset.Path)
	}
	for _, field := range s.preset.Clamped {
		fmt.Fprintf(stdout, "Clamped: %s\n", field)
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "Throw ratio:     %.4f\n", params.ThrowRatio)
	fmt.Fprintf(stdout, "Focus distance:  %.4f m\n", params.FocusDistance)
	fmt.Fprintf(stdout, "Lens shift:      %.1f%% / %.1f%%\n", params.HShift, params.VShift)
	fmt.Fprintf(stdout, "Texture:         %s\n", params.Texture.Label())
	fmt.Fprintf(stdout, "Resolution:      %s\n", d.Resolution)
	fmt.Fprintf(stdout, "Color:           %s\n", pattern.Hex(params.Color))
	fmt.Fprintf(stdout, "Power:           %.1f W\n", params.Power)
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "Focal length:    %.2f mm (sensor %.0f mm)\n", d.Lens.FocalLength, d.Lens.SensorWidth)
	fmt.Fprintf(stdout, "Field of view:   %.2f° x %.2f°\n", degrees(d.Lens.HorizontalFOV), degrees(d.Lens.VerticalFOV))
	fmt.Fprintf(stdout, "Camera shift:    (%.4f, %.4f)\n", d.CameraShift.X, d.CameraShift.Y)
	fmt.Fprintf(stdout, "Texture scale:   (%.4f, %.4f)\n", d.Texture.Scale.X, d.Texture.Scale.Y)
	fmt.Fprintf(stdout, "Texture shift:   (%.4f, %.4f)\n", d.Texture.Shift.X, d.Texture.Shift.Y)
	fmt.Fprintf(stdout, "Pattern feed:    %s\n", d.PatternFeed)
	if params.Texture == projection.ColorGrid {
		fmt.Fprintf(stdout, "Grid image:      %s\n", d.ImageName)
	}
	fmt.Fprintf(stdout, "Image size:      %.4f x %.4f m (diagonal %.4f m)\n", d.Extents.Width, d.Extents.Height, d.Extents.Diagonal)
	fmt.Fprintf(stdout, "Housing:         %.2f x %.2f x %.2f m, z %+.3f\n",
		d.Housing.Dimensions.X, d.Housing.Dimensions.Y, d.Housing.Dimensions.Z, d.Housing.ZOffset)
	return nil
}

func cmdOutline(args []string) error {
	fs := flag.NewFlagSet("outline", flag.ExitOnError)
	lines := fs.Bool("lines", false, "Print the 7 outline segments instead of the 17 points")
	asJSON := fs.Bool("json", false, "Print as JSON")
	location := fs.String("location", "", "Place the projector at x,y,z and print world-space points")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}

	s, err := openSession(cfg, fs.Arg(0), projector.New)
	if err != nil {
		return err
	}
	outline := s.proj.Derived().Outline

	if *location != "" {
		loc, err := parseVec3(*location)
		if err != nil {
			return fmt.Errorf("parsing -location: %w", err)
		}
		outline = outline.Transform(projection.DefaultRig().CameraMatrix(loc))
	}
	return writeOutline(stdout, outline, *lines, *asJSON)
}

// writeOutline prints the 17 outline points followed by the image center,
// or with lines set the outline as segments.
func writeOutline(w io.Writer, outline projection.Outline, lines, asJSON bool) error {
	if lines {
		verts := preview.OutlineVertices(outline)
		if asJSON {
			return writeJSON(w, verts)
		}
		for i := 0; i+5 < len(verts); i += 6 {
			fmt.Fprintf(w, "(%9.5f, %9.5f, %9.5f) -> (%9.5f, %9.5f, %9.5f)\n",
				verts[i], verts[i+1], verts[i+2], verts[i+3], verts[i+4], verts[i+5])
		}
		return nil
	}

	points := outline.Points()
	if asJSON {
		return writeJSON(w, points)
	}
	for i, p := range points {
		fmt.Fprintf(w, "%2d  %9.5f %9.5f %9.5f\n", i, p.X, p.Y, p.Z)
	}
	c := outline.Center()
	fmt.Fprintf(w, "center  %9.5f %9.5f %9.5f\n", c.X, c.Y, c.Z)
	return nil
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (math.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return math.Vec3{}, err
		}
		v[i] = f
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func cmdPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	output := fs.String("o", "", "Output file (default: timestamped file in the output dir)")
	size := fs.Int("size", 0, "Longest edge in pixels (default from config)")
	format := fs.String("format", "", "Image format: webp or png (default from config)")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}

	if *format != "" {
		cfg.Preview.Format = *format
	}
	f, err := preview.ParseFormat(cfg.Preview.Format)
	if err != nil {
		return err
	}

	s, err := openSession(cfg, fs.Arg(0), projector.New)
	if err != nil {
		return err
	}
	frame, err := s.render(*size)
	if err != nil {
		return err
	}

	path, err := preview.NewWriter(cfg.Preview.OutputDir, s.preset.Name, f).Save(frame.Image, *output)
	if err != nil {
		return err
	}
	b := frame.Image.Bounds()
	fmt.Fprintf(stdout, "Wrote %s (%dx%d)\n", path, b.Dx(), b.Dy())
	return nil
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	render := fs.Bool("preview", false, "Re-render the preview on every change")
	output := fs.String("o", "", "Preview output file (with -preview)")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("watch needs a preset file")
	}
	path := fs.Arg(0)

	s, err := openSession(cfg, path, projector.New)
	if err != nil {
		return err
	}
	w, err := preset.NewWatcher(path, cfg.Watch.Debounce)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	fmt.Fprintf(stdout, "Watching %s (Ctrl+C to stop)\n", path)
	for ev := range w.Events() {
		if ev.Err != nil {
			logger.Warn("Preset reload failed", zap.Error(ev.Err))
			continue
		}
		u, err := s.reload(ev.Preset)
		if err != nil {
			logger.Warn("Preset rejected", zap.Error(err))
			continue
		}
		d := s.proj.Derived()
		fmt.Fprintf(stdout, "%s: lens %.2f mm, image %.4f x %.4f m, %d sockets\n",
			ev.Preset.Name, d.Lens.FocalLength, d.Extents.Width, d.Extents.Height, len(u.Sockets()))

		if *render {
			if err := savePreview(s, *output); err != nil {
				logger.Warn("Preview failed", zap.Error(err))
			}
		}
	}

	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	presetPath := fs.String("preset", "", "Create a projector from this preset and push its changes")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}

	registry := projector.NewRegistry()

	server := bridge.NewServer(registry, bridge.Options{
		Listen:       cfg.Bridge.Listen,
		Path:         cfg.Bridge.Path,
		ReadLimit:    cfg.Bridge.ReadLimit,
		WriteTimeout: cfg.Bridge.WriteTimeout,
		Defaults:     cfg.Projector.Defaults,
		RandomColor:  cfg.Projector.RandomColor,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *presetPath != "" {
		s, err := openSession(cfg, *presetPath, registry.Create)
		if err != nil {
			return err
		}
		w, err := preset.NewWatcher(*presetPath, cfg.Watch.Debounce)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Preset watcher stopped", zap.Error(err))
			}
		}()
		go pushReloads(s, w, server)
		fmt.Fprintf(stdout, "Projector %q created from %s\n", s.preset.Name, *presetPath)
	}

	ready := make(chan net.Addr, 1)
	go func() {
		if addr, ok := <-ready; ok {
			fmt.Fprintf(stdout, "Serving on ws://%s%s (Ctrl+C to stop)\n", addr, cfg.Bridge.Path)
		}
	}()

	if err := server.ListenAndServe(ctx, ready); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// pushReloads applies each reloaded preset and announces the update to
// every connected host.
func pushReloads(s *session, w *preset.Watcher, server *bridge.Server) {
	for ev := range w.Events() {
		if ev.Err != nil {
			logger.Warn("Preset reload failed", zap.Error(ev.Err))
			continue
		}
		u, err := s.reload(ev.Preset)
		if err != nil {
			logger.Warn("Preset rejected", zap.Error(err))
			continue
		}
		server.Broadcast(bridge.UpdateResponse(u))
	}
}

func cmdSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	url := fs.String("url", "", "Bridge URL (default from config)")
	id := fs.String("id", "", "Projector ID")
	field := fs.String("field", "", "Field to change (change)")
	value := fs.String("value", "", "JSON value for the field (change)")
	paramsFile := fs.String("params", "", "Preset file whose parameters to create with (create)")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("send needs an operation: create, change, delete, derived or list")
	}

	req := bridge.Request{Op: fs.Arg(0), ID: *id}
	if *field != "" {
		req.Change = &projector.Change{Field: *field, Value: json.RawMessage(*value)}
	}
	if *paramsFile != "" {
		p, err := preset.Load(*paramsFile)
		if err != nil {
			return err
		}
		req.Params = &p.Projector
	}

	if *url == "" {
		*url = fmt.Sprintf("ws://%s%s", cfg.Bridge.Listen, cfg.Bridge.Path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Bridge.WriteTimeout)
	defer cancel()
	client, err := bridge.Dial(ctx, *url)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	if err := printJSON(resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return errors.New(resp.Error)
	}
	return nil
}

func savePreview(s *session, output string) error {
	f, err := preview.ParseFormat(s.cfg.Preview.Format)
	if err != nil {
		return err
	}
	frame, err := s.render(0)
	if err != nil {
		return err
	}
	path, err := preview.NewWriter(s.cfg.Preview.OutputDir, s.preset.Name, f).Save(frame.Image, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}

// stdout receives command output.
var stdout io.Writer = os.Stdout

func printJSON(v any) error {
	return writeJSON(stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func degrees(rad float64) float64 {
	return rad * 180 / gomath.Pi
}
