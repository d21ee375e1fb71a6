package infra

import (
	"fmt"

	"deliverypdv/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, migrates the PDV
// tables and applies the idempotent SQL patches GORM cannot express
// (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates every table and applies the schema patches.
// Also used by the integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Tenant{},
		&model.Operador{},
		&model.PDV{},
		&model.SessaoCaixa{},
		&model.MovimentoCaixa{},
		&model.FormaPagamento{},
		&model.Pedido{},
		&model.PedidoItem{},
		&model.Venda{},
		&model.Sequencia{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL for the constraints enforced by the
// database itself. Each statement is guarded so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One open drawer per operator.
		{"uidx_pdvs_operador_aberto", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uidx_pdvs_operador_aberto') THEN
    CREATE UNIQUE INDEX uidx_pdvs_operador_aberto
        ON pdvs (operador_id)
        WHERE status = 'ABERTO' AND operador_id IS NOT NULL;
  END IF;
END $$`},
		// One unclosed session per drawer.
		{"uidx_sessoes_caixa_pdv_aberta", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uidx_sessoes_caixa_pdv_aberta') THEN
    CREATE UNIQUE INDEX uidx_sessoes_caixa_pdv_aberta
        ON sessoes_caixa (pdv_id)
        WHERE fechado_em IS NULL;
  END IF;
END $$`},
		// Open-session scan used by the stale session monitor.
		{"idx_sessoes_caixa_abertas", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_sessoes_caixa_abertas') THEN
    CREATE INDEX idx_sessoes_caixa_abertas
        ON sessoes_caixa (aberto_em)
        WHERE fechado_em IS NULL;
  END IF;
END $$`},
		{"chk_movimentos_caixa_valor_positivo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movimentos_caixa_valor_positivo') THEN
    ALTER TABLE movimentos_caixa ADD CONSTRAINT chk_movimentos_caixa_valor_positivo CHECK (valor > 0);
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
