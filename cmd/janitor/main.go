package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Limpieza periódica: bans ya vencidos y partidas terminadas viejas. El bot
// no los necesita para operar, esto solo evita que las tablas crezcan.
func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, _ = pool.Exec(cctx, `DELETE FROM bans WHERE expires_at < now();`)
	_, _ = pool.Exec(cctx, `
DELETE FROM matches
WHERE created_at < now() - INTERVAL '90 days'
  AND status = 'finished';`)

	return "ok", nil
}

func main() { lambda.Start(handler) }
