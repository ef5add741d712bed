package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quotescope/quotescope/internal/utils"
	"github.com/quotescope/quotescope/pkg/cache"
	"github.com/quotescope/quotescope/pkg/insurers"
	"github.com/quotescope/quotescope/pkg/insurers/all"
	"github.com/quotescope/quotescope/pkg/orchestrator"
	"github.com/quotescope/quotescope/pkg/quote"
	"github.com/quotescope/quotescope/pkg/storage"
)

// runtime bundles what calc, multi and serve need. close must be called.
type runtime struct {
	orch    *orchestrator.Orchestrator
	history *storage.DB
	lock    *utils.DBLock
}

func (r *runtime) close() {
	r.orch.CloseAll()
	if r.history != nil {
		if err := r.history.Close(); err != nil {
			utils.Log.Warnf("Could not close history database: %v", err)
		}
	}
	if r.lock != nil {
		if err := r.lock.Unlock(); err != nil {
			utils.Log.Warn(err)
		}
	}
}

func workerConfig() insurers.Config {
	return insurers.Config{
		ArtifactDir:     viper.GetString("artifacts.dir"),
		Proxy:           viper.GetString("browser.proxy"),
		Log:             utils.Log,
		StepTimeout:     viper.GetDuration("browser.steptimeout"),
		ResultTimeout:   viper.GetDuration("browser.resulttimeout"),
		RestrictDomains: viper.GetBool("browser.restrictdomains"),
	}
}

// newRuntime wires cache, workers and, when enabled, the history store.
// Writers to the history hold its lock for their whole lifetime.
func newRuntime(cmd *cobra.Command, concurrency int) (*runtime, error) {
	c := cache.New(
		cache.WithTTL(viper.GetDuration("cache.ttl")),
		cache.WithSweepInterval(viper.GetDuration("cache.sweep")),
		cache.WithLogger(utils.Log),
	)

	rt := &runtime{}
	opts := []orchestrator.Option{
		orchestrator.WithLogger(utils.Log),
		orchestrator.WithConcurrency(concurrency),
	}

	withHistory := viper.GetBool("history.enabled")
	if cmd.Flags().Lookup("history") != nil {
		if v, _ := cmd.Flags().GetBool("history"); v {
			withHistory = true
		}
	}
	if withHistory {
		db, lock, err := openHistory(true)
		if err != nil {
			c.Close()
			return nil, err
		}
		rt.history, rt.lock = db, lock
		opts = append(opts, orchestrator.WithRecorder(db))
	}

	rt.orch = orchestrator.New(c, all.Workers(workerConfig()), opts...)
	return rt, nil
}

// openHistory opens the history database, creating its directory. The
// database lock is taken first, exclusively when write is set and shared
// otherwise. Callers release it once done with the database.
func openHistory(write bool) (*storage.DB, *utils.DBLock, error) {
	dbPath, err := utils.GetAbsDBPath(viper.GetString("history.dbpath"))
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("could not create history directory: %w", err)
	}

	lock, err := utils.NewDBLock(dbPath)
	if err != nil {
		return nil, nil, err
	}
	take := lock.RLock
	if write {
		take = lock.Lock
	}
	if err := take(); err != nil {
		return nil, nil, err
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		lock.Unlock()
		return nil, nil, fmt.Errorf("could not open history database %s: %w", dbPath, err)
	}
	return db, lock, nil
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("request", "r", "", "JSON file with the request (same body as the HTTP API); other request flags are ignored")
	cmd.Flags().String("reg", "", "Registration number")
	cmd.Flags().String("brand", "", "Vehicle brand")
	cmd.Flags().String("model", "", "Vehicle model")
	cmd.Flags().Int("year", 0, "Production year")
	cmd.Flags().Int("engine", 0, "Engine capacity in cm3")
	cmd.Flags().String("fuel", "", "Fuel type: petrol, diesel, lpg, electric, hybrid (Polish names accepted)")
	cmd.Flags().Int("age", 0, "Driver age")
	cmd.Flags().String("license", "", "Driving license issue date (YYYY-MM-DD)")
	cmd.Flags().Int("accidents", 0, "Number of accidents in recent years")
	cmd.Flags().String("pesel", "", "Driver PESEL")
	cmd.Flags().Bool("oc-only", false, "Quote third-party liability only")
	cmd.Flags().Bool("ac", false, "Include AC (own damage) cover")
	cmd.Flags().Float64("ac-value", 0, "Vehicle value for AC cover, PLN")
	cmd.Flags().Bool("assistance", false, "Include assistance")
	cmd.Flags().Bool("nnw", false, "Include NNW (personal accident) cover")
	cmd.Flags().Bool("json", false, "Print results as JSON")
}

// loadPayload reads the request from --request or assembles it from flags.
func loadPayload(cmd *cobra.Command) (quote.RequestPayload, error) {
	var p quote.RequestPayload
	if path, _ := cmd.Flags().GetString("request"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return p, err
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("could not parse %s: %w", path, err)
		}
		return p, nil
	}

	f := cmd.Flags()
	p.Vehicle.RegistrationNumber, _ = f.GetString("reg")
	p.Vehicle.Brand, _ = f.GetString("brand")
	p.Vehicle.Model, _ = f.GetString("model")
	p.Vehicle.Year, _ = f.GetInt("year")
	if engine, _ := f.GetInt("engine"); engine > 0 {
		p.Vehicle.EngineCapacity = quote.Int(engine)
	}
	p.Vehicle.FuelType, _ = f.GetString("fuel")
	p.Driver.Age, _ = f.GetInt("age")
	p.Driver.DrivingLicenseDate, _ = f.GetString("license")
	p.Driver.Pesel, _ = f.GetString("pesel")
	if f.Changed("accidents") {
		accidents, _ := f.GetInt("accidents")
		p.Driver.AccidentHistory = quote.Int(accidents)
	}
	p.Options.OCOnly, _ = f.GetBool("oc-only")
	p.Options.ACIncluded, _ = f.GetBool("ac")
	p.Options.Assistance, _ = f.GetBool("assistance")
	p.Options.NNW, _ = f.GetBool("nnw")
	if v, _ := f.GetFloat64("ac-value"); v > 0 {
		p.Options.ACValue = quote.Float(v)
	}
	return p, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}
