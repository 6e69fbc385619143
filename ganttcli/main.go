// Package ganttcli implements the gantt command.
package ganttcli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"cdr.dev/slog"
	"github.com/spf13/pflag"

	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttstyle"
	"oss.terrastruct.com/gantt/lib/log"
	"oss.terrastruct.com/gantt/lib/version"
	"oss.terrastruct.com/gantt/lib/xmain"
)

func Run(ctx context.Context, ms *xmain.State) (err error) {
	watchFlag, err := ms.Opts.Bool("GANTT_WATCH", "watch", "w", false, "watch for changes to input and live reload. Use $HOST and $PORT to specify the listening address.\n(default localhost:0, which will open on a randomly available local port).")
	if err != nil {
		return err
	}
	hostFlag := ms.Opts.String("HOST", "host", "h", "localhost", "host listening address when used with watch")
	portFlag := ms.Opts.String("PORT", "port", "p", "0", "port listening address when used with watch")
	styleFlag := ms.Opts.String("GANTT_STYLE", "style", "s", "", "path to a TOML file overriding the built-in style constants")
	widthFlag, err := ms.Opts.Float64("GANTT_LAYOUT_WIDTH", "layout-width", "", 1200, "width of the viewport in pixels")
	if err != nil {
		return err
	}
	heightFlag, err := ms.Opts.Float64("GANTT_LAYOUT_HEIGHT", "layout-height", "", 600, "height of the viewport in pixels")
	if err != nil {
		return err
	}
	scrollLeftFlag, err := ms.Opts.Float64("GANTT_SCROLL_LEFT", "scroll-left", "", 0, "initial horizontal scroll offset in pixels")
	if err != nil {
		return err
	}
	scrollTopFlag, err := ms.Opts.Float64("GANTT_SCROLL_TOP", "scroll-top", "", 0, "initial vertical scroll offset in pixels")
	if err != nil {
		return err
	}
	rtlFlag, err := ms.Opts.Bool("GANTT_RTL", "rtl", "", false, "lay the time axis out right to left, overriding the chart direction")
	if err != nil {
		return err
	}
	depStyleFlag := ms.Opts.String("GANTT_DEPENDENCY_STYLE", "dependency-style", "", "", "dependency line style: rectilinear or straight. Overrides the chart option when set")
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		ms.Log.Warn.Printf("Invalid DEBUG flag value ignored")
		debugFlag = new(bool)
	}
	browserFlag := ms.Opts.String("BROWSER", "browser", "", "", "browser executable that watch opens. Setting to 0 opens no browser.")
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	args := ms.Opts.Flags.Args()
	if len(args) > 0 && args[0] == "version" {
		if len(args) > 1 {
			return xmain.UsageErrorf("version subcommand accepts no arguments")
		}
		fmt.Fprintln(ms.Stdout, version.Version)
		return nil
	}
	if *versionFlag {
		fmt.Fprintln(ms.Stdout, version.Version)
		return nil
	}
	if len(args) == 0 {
		help(ms)
		return nil
	}
	if len(args) > 2 {
		return xmain.UsageErrorf("too many arguments passed")
	}

	if *debugFlag {
		ctx = log.Leveled(ctx, slog.LevelDebug)
		ms.Env.Setenv("DEBUG", "1")
	} else {
		// cmdlog reports everything the user needs.
		ctx = xmain.DiscardSlog(ctx)
	}
	if *browserFlag != "" {
		ms.Env.Setenv("BROWSER", *browserFlag)
	}

	inputPath := args[0]
	outputPath := "-"
	if len(args) == 2 {
		outputPath = args[1]
	} else if inputPath != "-" {
		outputPath = renameExt(inputPath, ".svg")
	}
	inputPath = ms.AbsPath(inputPath)
	outputPath = ms.AbsPath(outputPath)

	if *widthFlag <= 0 || *heightFlag <= 0 {
		return xmain.UsageErrorf("--layout-width and --layout-height must be positive")
	}
	o := chartOpts{
		width:      *widthFlag,
		height:     *heightFlag,
		scrollLeft: *scrollLeftFlag,
		scrollTop:  *scrollTopFlag,
		rtl:        *rtlFlag,
		depStyle:   ganttdata.LineStyle(*depStyleFlag),
		style:      ganttstyle.Default(),
	}
	switch o.depStyle {
	case "", ganttdata.LineRectilinear, ganttdata.LineStraight:
	default:
		return xmain.UsageErrorf("--dependency-style must be rectilinear or straight. You provided: %s", *depStyleFlag)
	}
	if *styleFlag != "" {
		o.style, err = ganttstyle.Load(ms.AbsPath(*styleFlag))
		if err != nil {
			return xmain.UsageErrorf("%v", err)
		}
	}

	if *watchFlag {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		w, err := newWatcher(ctx, ms, watcherOpts{
			chartOpts:  o,
			host:       *hostFlag,
			port:       *portFlag,
			inputPath:  inputPath,
			outputPath: outputPath,
		})
		if err != nil {
			return err
		}
		return w.run()
	}

	ctx, cancel := log.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	err = renderFile(ctx, ms, o, inputPath, outputPath)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", ms.HumanPath(inputPath), err)
	}
	return nil
}

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--watch] file.json|file.yaml [file.svg]

%[1]s renders the gantt chart in the input file to an SVG of the initial viewport.
The output defaults to the input path with an .svg extension. Pass - to read
from stdin or write to stdout.

Flags:
%[3]s

Subcommands:
  %[1]s version - Print the version
`, filepath.Base(ms.Name), version.Version, ms.Opts.Help())
}

func renameExt(fp string, ext string) string {
	e := filepath.Ext(fp)
	return strings.TrimSuffix(fp, e) + ext
}
