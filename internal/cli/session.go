package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/volsuite/volsuite/config"
	"github.com/volsuite/volsuite/internal/export"
	"github.com/volsuite/volsuite/internal/marketdata"
	"github.com/volsuite/volsuite/internal/render"
	"github.com/volsuite/volsuite/internal/table"
	"github.com/volsuite/volsuite/internal/vol"
)

// Session holds the state of one interactive shell: the active ticker and
// the last printed frame, which export and plot commands operate on.
type Session struct {
	manager *config.Manager
	market  *marketdata.Client
	news    *marketdata.NewsClient
	sink    render.Sink
	out     io.Writer

	ticker string
	last   *table.Frame
}

// NewSession wires a session from the config manager.
func NewSession(manager *config.Manager, out io.Writer) *Session {
	cfg := manager.Get()
	return &Session{
		manager: manager,
		market:  marketdata.NewClient(&cfg),
		news:    marketdata.NewNewsClient(),
		sink:    render.NewTerminal(out),
		out:     out,
	}
}

// Ticker returns the active ticker symbol, empty when none is loaded.
func (s *Session) Ticker() string {
	return s.ticker
}

// LastFrame returns the last printed frame, nil when nothing was printed.
func (s *Session) LastFrame() *table.Frame {
	return s.last
}

func (s *Session) cfg() config.Config {
	return s.manager.Get()
}

// showFrame prints a frame and caches it as the last output.
func (s *Session) showFrame(f *table.Frame) {
	s.last = f
	fmt.Fprintf(s.out, "\n%s\n\n", f.Render(s.cfg().DisplayMaxRows))
}

func (s *Session) requireTicker() error {
	if s.ticker == "" {
		return fmt.Errorf("no ticker loaded, use 'ticker <symbol>' first")
	}
	return nil
}

// SetTicker probes the symbol against the data source and makes it the
// session ticker.
func (s *Session) SetTicker(symbol string) error {
	symbol = marketdata.NormalizeSymbol(symbol)
	fmt.Fprintln(s.out, infoStyle.Render(fmt.Sprintf("Downloading ticker symbol '%s'...", symbol)))
	if err := s.market.Probe(symbol); err != nil {
		return fmt.Errorf("unable to fetch data for symbol %q, check your connection and/or that the symbol exists: %w", symbol, err)
	}
	s.ticker = symbol
	fmt.Fprintln(s.out, successStyle.Render(fmt.Sprintf("Ticker symbol '%s' successfully loaded.", symbol)))
	return nil
}

// fetchBars resolves a period argument (named period with optional interval,
// or a start/end date pair) into bars plus the period label used in
// export metadata.
func (s *Session) fetchBars(args []string) ([]marketdata.Bar, string, error) {
	if len(args) == 0 {
		return nil, "", fmt.Errorf("missing time period, use a named period %v or a start and end date", marketdata.PeriodNames())
	}

	switch {
	case marketdata.ValidPeriod(args[0]):
		interval := "1d"
		label := args[0]
		if len(args) > 1 {
			if !marketdata.ValidInterval(args[1]) {
				return nil, "", fmt.Errorf("invalid time interval %q, use %v", args[1], marketdata.IntervalNames())
			}
			interval = args[1]
			label = args[0] + "_" + args[1]
		}
		bars, err := s.market.HistoryPeriod(s.ticker, args[0], interval)
		return bars, label, err

	case IsDate(args[0]):
		if len(args) < 2 {
			return nil, "", fmt.Errorf("missing end date, use date format 2006-01-02")
		}
		if !IsDate(args[1]) {
			return nil, "", fmt.Errorf("invalid end date %q, use date format 2006-01-02", args[1])
		}
		start, _ := time.Parse("2006-01-02", args[0])
		end, _ := time.Parse("2006-01-02", args[1])
		if !end.After(start) {
			return nil, "", fmt.Errorf("end date must be after start date")
		}
		bars, err := s.market.History(s.ticker, start, end, "1d")
		return bars, args[0] + "_" + args[1], err

	default:
		return nil, "", fmt.Errorf("%q is not recognized as a valid time period or date, use %v or date format 2006-01-02", args[0], marketdata.PeriodNames())
	}
}

// History prints OHLCV history for a named period or date range.
func (s *Session) History(args []string) error {
	if err := s.requireTicker(); err != nil {
		return err
	}

	bars, label, err := s.fetchBars(args)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("no price data returned for %s", s.ticker)
	}

	s.showFrame(table.FromBars(bars, s.ticker, label))
	return nil
}

// OptionChain prints one side of the option chain for an expiration.
// Without arguments it lists the available expirations.
func (s *Session) OptionChain(args []string) error {
	if err := s.requireTicker(); err != nil {
		return err
	}

	if len(args) == 0 {
		return s.listExpirations()
	}
	if !IsDate(args[0]) {
		return fmt.Errorf("invalid expiration date %q, use date format 2006-01-02", args[0])
	}
	if len(args) < 2 {
		return fmt.Errorf("missing option type, use 'calls' or 'puts'")
	}

	expiration, _ := time.Parse("2006-01-02", args[0])
	chain, err := s.market.Chain(s.ticker, expiration)
	if err != nil {
		return err
	}

	side := args[1]
	var filtered marketdata.Chain
	switch side {
	case "calls":
		filtered = marketdata.Chain{UnderlyingSymbol: chain.UnderlyingSymbol, Expiration: chain.Expiration, Calls: chain.Calls}
	case "puts":
		filtered = marketdata.Chain{UnderlyingSymbol: chain.UnderlyingSymbol, Expiration: chain.Expiration, Puts: chain.Puts}
	default:
		return fmt.Errorf("unknown option type %q, use 'calls' or 'puts'", side)
	}

	f := table.FromChain(&filtered, s.ticker)
	f.Meta.Datatype = "oc_" + side
	s.showFrame(f)
	return nil
}

func (s *Session) listExpirations() error {
	expirations, err := s.market.Expirations(s.ticker)
	if err != nil {
		return err
	}
	if len(expirations) == 0 {
		return fmt.Errorf("no option expirations available for %s", s.ticker)
	}

	fmt.Fprintln(s.out, infoStyle.Render("Available expirations:"))
	for _, exp := range expirations {
		fmt.Fprintf(s.out, "  %s\n", exp.Format("2006-01-02"))
	}
	return nil
}

// News prints recent headlines for the active ticker.
func (s *Session) News() error {
	if err := s.requireTicker(); err != nil {
		return err
	}

	articles, err := s.news.RecentNews(s.ticker, s.cfg().NewsMaxArticles)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return fmt.Errorf("no recent news found for %s", s.ticker)
	}

	fmt.Fprintln(s.out)
	for _, a := range articles {
		fmt.Fprintln(s.out, headlineStyle.Render(fmt.Sprintf("%s - %s", a.Publisher, a.Title)))
		if a.Summary != "" {
			fmt.Fprintln(s.out, a.Summary)
		}
		fmt.Fprintln(s.out, dimStyle.Render(a.URL))
		fmt.Fprintln(s.out)
	}

	s.last = table.FromNews(articles, s.ticker)
	return nil
}

// HV prints the rolling historical volatility table and the realized
// volatility over the whole sample.
func (s *Session) HV(args []string) error {
	if err := s.requireTicker(); err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: hv <method> <period | startdate enddate>")
	}

	method := vol.Method(args[0])
	bars, label, err := s.fetchBars(args[1:])
	if err != nil {
		return err
	}

	rolling, realized, err := vol.ComputeHV(marketdata.PriceSeries(bars), method, s.cfg().HVRollingWindows)
	if err != nil {
		return err
	}

	s.showFrame(table.FromRolling(rolling, s.ticker, label))
	fmt.Fprintln(s.out, infoStyle.Render(fmt.Sprintf("Realized Volatility: %s", table.FormatNullFloat(realized.Value))))
	fmt.Fprintln(s.out)
	return nil
}

// IVSkew prints the volatility skew for one expiration and hands the two
// arrays to the rendering sink. Without an expiration argument the user
// picks one interactively.
func (s *Session) IVSkew(args []string) error {
	if err := s.requireTicker(); err != nil {
		return err
	}

	var expiration time.Time
	if len(args) > 0 {
		if !IsDate(args[0]) {
			return fmt.Errorf("invalid expiration date %q, use date format 2006-01-02", args[0])
		}
		expiration, _ = time.Parse("2006-01-02", args[0])
	} else {
		expirations, err := s.market.Expirations(s.ticker)
		if err != nil {
			return err
		}
		expiration, err = PromptForExpiration(expirations)
		if err != nil {
			return err
		}
	}

	chain, err := s.market.Chain(s.ticker, expiration)
	if err != nil {
		return err
	}

	points := vol.BuildSkew(marketdata.VolContracts(chain.Calls), marketdata.VolContracts(chain.Puts))
	if len(points) == 0 {
		return fmt.Errorf("no out-of-the-money contracts with implied volatility for %s", expiration.Format("2006-01-02"))
	}

	s.showFrame(table.FromSkew(points, s.ticker, expiration))

	strike, iv := render.SkewArrays(points)
	title := fmt.Sprintf("%s volatility skew %s", s.ticker, expiration.Format("2006-01-02"))
	return s.sink.Skew(strike, iv, title)
}

// IVSurface prints the surface point cloud across all expirations,
// interpolates it onto a regular mesh and hands the meshes to the
// rendering sink.
func (s *Session) IVSurface(line *Line) error {
	if err := s.requireTicker(); err != nil {
		return err
	}

	cfg := s.cfg()
	res, err := line.IntFlag("res", cfg.IVSurfaceRes)
	if err != nil {
		return err
	}
	strikeRange, err := line.FloatFlag("range", cfg.IVSurfaceRange)
	if err != nil {
		return err
	}
	cmap := line.Flag("cmap", cfg.IVSurfaceCmap)
	if !render.ValidCmap(cmap) {
		return fmt.Errorf("unknown colormap %q, valid: %v", cmap, render.CmapNames())
	}

	expirations, err := s.market.Expirations(s.ticker)
	if err != nil {
		return err
	}
	spot, err := s.market.Spot(s.ticker)
	if err != nil {
		return err
	}

	fetch := func(expiration time.Time) ([]vol.OptionContract, []vol.OptionContract, error) {
		chain, err := s.market.Chain(s.ticker, expiration)
		if err != nil {
			return nil, nil, err
		}
		return marketdata.VolContracts(chain.Calls), marketdata.VolContracts(chain.Puts), nil
	}

	points, err := vol.BuildSurface(expirations, fetch, spot, time.Now())
	if err != nil {
		return err
	}

	s.showFrame(table.FromSurfacePoints(points, s.ticker))

	grid, err := vol.InterpolateSurface(points, strikeRange, res)
	if err != nil {
		return err
	}

	strike, dte, iv := render.SurfaceMeshes(grid)
	return s.sink.Surface(strike, dte, iv, cmap)
}

// Last reprints the cached frame.
func (s *Session) Last() error {
	if s.last == nil {
		return fmt.Errorf("no cached output to print")
	}
	fmt.Fprintf(s.out, "\n%s\n\n", s.last.Render(s.cfg().DisplayMaxRows))
	return nil
}

// Export writes the cached frame to CSV inside the export folder.
func (s *Session) Export(name string) error {
	if s.last == nil {
		return fmt.Errorf("no cached data to export")
	}

	mgr := export.NewManager(s.cfg().ExportFolder)
	path, err := mgr.WriteFrame(s.last, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, successStyle.Render(fmt.Sprintf("Data successfully saved to '%s'.", path)))
	return nil
}

// Import loads an external CSV into the cached frame slot.
func (s *Session) Import(path string) error {
	if path == "" {
		return fmt.Errorf("usage: import <filepath>")
	}
	f, err := export.ReadFrame(path)
	if err != nil {
		return err
	}
	s.last = f
	fmt.Fprintln(s.out, successStyle.Render(fmt.Sprintf("Successfully loaded '%s' into cache as last output.", path)))
	return nil
}

// reloadClients rebuilds data clients after a settings change, since
// cache location and TTL live in the config.
func (s *Session) reloadClients(cfg config.Config) {
	s.market = marketdata.NewClient(&cfg)
}
