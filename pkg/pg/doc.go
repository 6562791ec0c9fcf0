// Package pg provides PostgreSQL connection management with retry logic,
// goose-based schema migrations, health checks, and helpers for classifying
// common pgx/pgconn errors.
//
// Connection setup reads its tuning from environment variables (see Config)
// and retries with linear backoff, so services can start before the database
// finishes booting:
//
//	cfg := config.MustLoad[pg.Config]()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Error("db unavailable", "error", err)
//		os.Exit(1)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		log.Error("migrations failed", "error", err)
//		os.Exit(1)
//	}
//
// The error helpers let repositories translate driver errors into domain
// sentinels without importing pgconn everywhere:
//
//	if pg.IsDuplicateKeyError(err) {
//		return account.ErrEmailTaken
//	}
package pg
