package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/df-mc/blockflow/server"
	"github.com/df-mc/blockflow/server/console"
	"github.com/df-mc/blockflow/server/scenario"
	"github.com/pelletier/go-toml"
)

func main() {
	configPath := flag.String("config", "config.toml", "path of the server configuration")
	scenarioPath := flag.String("scenario", "", "run the scenario file passed and exit")
	debug := flag.Bool("debug", false, "log debug messages")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *scenarioPath != "" {
		if err := runScenario(*scenarioPath, log); err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	conf, err := readConfig(*configPath, log)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
	srv := conf.New()
	srv.CloseOnProgramEnd()

	go console.New(srv.World(), log).Run(context.Background())
	<-srv.Closed()
}

// runScenario runs the scenario file at the path passed and prints its result.
func runScenario(path string, log *slog.Logger) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	res, err := sc.Run(log)
	if err != nil {
		return err
	}
	fmt.Printf("%v: step %v, digest %016x\n", sc.Name, res.Step, res.Digest)
	for _, f := range res.Failures {
		fmt.Println("FAIL", f)
	}
	if !res.Passed() {
		return fmt.Errorf("%v: %d expectation(s) failed", sc.Name, len(res.Failures))
	}
	return nil
}

// readConfig reads the configuration from the file at the path passed, or
// creates the file with the default configuration if it does not yet exist.
func readConfig(path string, log *slog.Logger) (server.Config, error) {
	c := server.DefaultConfig()
	var zero server.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := toml.Marshal(c)
		if err != nil {
			return zero, fmt.Errorf("encode default config: %v", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return zero, fmt.Errorf("create default config: %v", err)
		}
		return c.Config(log)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read config: %v", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return zero, fmt.Errorf("decode config: %v", err)
	}
	return c.Config(log)
}
