package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/assets/internal/asset"
	"github.com/gestaozabele/assets/internal/auth"
	"github.com/gestaozabele/assets/internal/config"
	"github.com/gestaozabele/assets/internal/db"
	internalhttp "github.com/gestaozabele/assets/internal/http"
	"github.com/gestaozabele/assets/internal/util"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuração inválida")
	}

	ctx := context.Background()
	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "lookup":
		if err := runLookup(ctx, cfg, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao consultar asset")
		}
	case "sign":
		if err := runSign(ctx, cfg, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao assinar chaves")
		}
	case "token":
		if err := runToken(cfg, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao emitir token")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "assetctl CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  assetctl lookup --token space/2024/01/31/6f1c...")
	fmt.Fprintln(os.Stderr, "  assetctl sign space/a.png space/b.png")
	fmt.Fprintln(os.Stderr, "  assetctl token --user 8d3c... [--roles ASSET_MANAGE,MEMBER]")
}

func runLookup(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	token := fs.String("token", "", "token (chave do recurso) retornado no upload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := util.RequireString(strings.TrimSpace(*token), "token"); err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	client, err := internalhttp.NewStorageClient(cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	var inspector asset.ObjectInspector
	if cfg.Storage.UsesS3() {
		inspector = client
	}

	callbacks := asset.NewCallbackService(
		asset.NewRepository(pool),
		inspector,
		asset.NewRedisReservations(redisClient),
		log.With().Str("component", "assetctl").Logger(),
	)

	results, err := callbacks.LoadAssetUploadResults(ctx, asset.TypeDatasheet, []string{strings.TrimSpace(*token)})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("asset não encontrado")
		return nil
	}
	return printJSON(results[0])
}

func runSign(ctx context.Context, cfg *config.Config, args []string) error {
	keys := util.SplitList(args)
	if len(keys) == 0 {
		return errors.New("informe ao menos uma chave")
	}

	var signer asset.URLSigner
	if cfg.Signature.Enabled {
		client, err := internalhttp.NewStorageClient(cfg)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		signer = client
	}

	signatures, err := asset.NewSignatureService(cfg.Signature.Host, signer).SignURLs(ctx, keys)
	if err != nil {
		return err
	}
	return printJSON(signatures)
}

func runToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		user  = fs.String("user", "", "UUID do usuário (subject)")
		roles = fs.String("roles", "", "papéis separados por vírgula")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID, err := uuid.Parse(strings.TrimSpace(*user))
	if err != nil {
		return errors.New("--user deve ser um UUID")
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL).
		GenerateAccessToken(userID, util.SplitList([]string{*roles}))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
