package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"igapi"
)

const usage = `Usage: igsign [-config file.toml] <command> [args]
Commands:
  sign <json>        print the signed envelope for a payload
  get <path>         send a GET and print the normalized body
  post <path> <json> send a signed POST and print the normalized body`

func main() {
	configPath := flag.String("config", "", "optional TOML config file")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := igapi.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg.LogLevel)
	os.Exit(run(cfg, logger, args))
}

func setupLogging(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "igsign").Logger()
}

func run(cfg igapi.Config, log zerolog.Logger, args []string) int {
	client, err := igapi.NewClient(cfg.State(), cfg.ClientOptions(igapi.NewZerologLogger(log))...)
	if err != nil {
		log.Error().Err(err).Msg("create client")
		return 1
	}

	ctx := context.Background()
	switch args[0] {
	case "sign":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, usage)
			return 2
		}
		payload, err := igapi.ParsePayload([]byte(args[1]))
		if err != nil {
			log.Error().Err(err).Msg("parse payload")
			return 2
		}
		env, err := client.SignPost(payload)
		if err != nil {
			log.Error().Err(err).Msg("sign")
			return 1
		}
		return printJSON(env)

	case "get":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, usage)
			return 2
		}
		resp, err := client.Send(ctx, igapi.RequestOptions{Path: args[1]})
		return report(log, resp, err)

	case "post":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, usage)
			return 2
		}
		payload, err := igapi.ParsePayload([]byte(args[2]))
		if err != nil {
			log.Error().Err(err).Msg("parse payload")
			return 2
		}
		env, err := client.SignPost(payload)
		if err != nil {
			log.Error().Err(err).Msg("sign")
			return 1
		}
		resp, err := client.Send(ctx, igapi.RequestOptions{Path: args[1], Form: env.Form()})
		return report(log, resp, err)

	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
}

func report(log zerolog.Logger, resp *igapi.Response, err error) int {
	if err != nil {
		if apiErr, ok := igapi.AsAPIError(err); ok {
			log.Error().Str("kind", apiErr.Kind.String()).
				Bool("fatal", igapi.IsFatalError(err)).
				Bool("retryable", igapi.IsRetryableError(err)).
				Msg(apiErr.Error())
			if apiErr.Checkpoint != nil {
				log.Error().Str("api_path", apiErr.Checkpoint.Challenge.APIPath).Msg("checkpoint challenge")
			}
			return 1
		}
		log.Error().Err(err).Msg("request failed")
		return 1
	}
	fmt.Println(string(resp.Raw))
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
