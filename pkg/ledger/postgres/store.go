// Package postgres archives bin-ledger state into Postgres. It mirrors
// the in-memory ledger for analytics and restarts; the engine never
// reads from it on the hot path.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/binfi-labs/dlmm-go/pkg/ledger"
)

// Store provides Postgres persistence for ledger state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPools inserts or updates pool configuration rows.
func (s *Store) UpsertPools(ctx context.Context, pools []ledger.Pool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pools {
		batch.Queue(`
			INSERT INTO pools (
				pool_id, name, symbol, uri, x_token, y_token, vault, fee_address,
				active_bin_id, bin_step, initial_price,
				x_protocol_fee, x_provider_fee, x_variable_fee,
				y_protocol_fee, y_provider_fee, y_variable_fee,
				status, bin_change_count, creation_height, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,now(),now())
			ON CONFLICT (pool_id)
			DO UPDATE SET
				active_bin_id = EXCLUDED.active_bin_id,
				x_protocol_fee = EXCLUDED.x_protocol_fee,
				x_provider_fee = EXCLUDED.x_provider_fee,
				x_variable_fee = EXCLUDED.x_variable_fee,
				y_protocol_fee = EXCLUDED.y_protocol_fee,
				y_provider_fee = EXCLUDED.y_provider_fee,
				y_variable_fee = EXCLUDED.y_variable_fee,
				status = EXCLUDED.status,
				bin_change_count = EXCLUDED.bin_change_count,
				updated_at = now()
		`,
			int64(p.ID),
			p.Name,
			p.Symbol,
			p.URI,
			p.XToken.String(),
			p.YToken.String(),
			p.Vault.String(),
			p.FeeAddress.String(),
			p.ActiveBinID,
			int64(p.BinStep),
			p.InitialPrice.String(),
			int64(p.XProtocolFee),
			int64(p.XProviderFee),
			int64(p.XVariableFee),
			int64(p.YProtocolFee),
			int64(p.YProviderFee),
			int64(p.YVariableFee),
			int16(p.Status),
			int64(p.BinChangeCount),
			int64(p.CreationHeight),
		)
	}
	return s.send(ctx, batch, len(pools))
}

// UpsertBins inserts or updates per-bin reserve rows for one pool.
func (s *Store) UpsertBins(ctx context.Context, poolID uint64, bins map[uint32]ledger.Bin) error {
	if len(bins) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for binID, b := range bins {
		batch.Queue(`
			INSERT INTO bins (
				pool_id, bin_id, x_balance, y_balance, total_lp_supply, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,now(),now())
			ON CONFLICT (pool_id, bin_id)
			DO UPDATE SET
				x_balance = EXCLUDED.x_balance,
				y_balance = EXCLUDED.y_balance,
				total_lp_supply = EXCLUDED.total_lp_supply,
				updated_at = now()
		`,
			int64(poolID),
			int64(binID),
			b.XBalance.String(),
			b.YBalance.String(),
			b.TotalLpSupply.String(),
		)
	}
	return s.send(ctx, batch, len(bins))
}

// UpsertPositions inserts or updates per-(bin,owner) share rows.
func (s *Store) UpsertPositions(ctx context.Context, positions []ledger.Position) error {
	if len(positions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pos := range positions {
		batch.Queue(`
			INSERT INTO positions (
				pool_id, bin_id, owner, shares, created_at, updated_at
			) VALUES ($1,$2,$3,$4,now(),now())
			ON CONFLICT (pool_id, bin_id, owner)
			DO UPDATE SET
				shares = EXCLUDED.shares,
				updated_at = now()
		`,
			int64(pos.Key.PoolID),
			int64(pos.Key.BinID),
			pos.Key.Owner.String(),
			pos.Shares.String(),
		)
	}
	return s.send(ctx, batch, len(positions))
}

// UpsertUnclaimedFees inserts or updates a pool's fee accumulator row.
func (s *Store) UpsertUnclaimedFees(ctx context.Context, poolID uint64, fees ledger.UnclaimedFees) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO unclaimed_fees (
			pool_id, x_fee, y_fee, created_at, updated_at
		) VALUES ($1,$2,$3,now(),now())
		ON CONFLICT (pool_id)
		DO UPDATE SET
			x_fee = EXCLUDED.x_fee,
			y_fee = EXCLUDED.y_fee,
			updated_at = now()
	`,
		int64(poolID),
		fees.XFee.String(),
		fees.YFee.String(),
	)
	return s.send(ctx, batch, 1)
}

// Archive mirrors the full state of src into Postgres.
func (s *Store) Archive(ctx context.Context, src ledger.Store) error {
	pools := src.Pools()
	if err := s.UpsertPools(ctx, pools); err != nil {
		return fmt.Errorf("archive pools: %w", err)
	}
	for _, p := range pools {
		if err := s.UpsertBins(ctx, p.ID, src.Bins(p.ID)); err != nil {
			return fmt.Errorf("archive bins for pool %d: %w", p.ID, err)
		}
		if err := s.UpsertPositions(ctx, src.Positions(p.ID)); err != nil {
			return fmt.Errorf("archive positions for pool %d: %w", p.ID, err)
		}
		if err := s.UpsertUnclaimedFees(ctx, p.ID, src.GetUnclaimedFees(p.ID)); err != nil {
			return fmt.Errorf("archive fees for pool %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *Store) send(ctx context.Context, batch *pgx.Batch, n int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
