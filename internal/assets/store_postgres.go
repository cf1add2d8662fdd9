package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tokengate/pkg/domain"
	"tokengate/pkg/platform/sentinel"
)

// PostgresStore persists assets in a single table. Attribute maps and
// revenue streams ride along as JSONB; they are read and written whole, the
// registry is the only writer.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const assetColumns = `id, name, category, valuation, metadata_uri, custodian, status,
	token_contract, text_attributes, numeric_attributes, revenue_streams,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, asset Asset) error {
	text, numeric, streams, err := marshalAssetDocs(asset)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		asset.ID.String(), asset.Name, string(asset.Category), asset.Valuation,
		asset.MetadataURI, custodianValue(asset.Custodian), string(asset.Status),
		tokenContractValue(asset.TokenContract), text, numeric, streams,
		asset.CreatedAt, asset.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, asset Asset) error {
	text, numeric, streams, err := marshalAssetDocs(asset)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE assets SET
			name = $2, category = $3, valuation = $4, metadata_uri = $5,
			custodian = $6, status = $7, token_contract = $8,
			text_attributes = $9, numeric_attributes = $10,
			revenue_streams = $11, updated_at = $12
		WHERE id = $1`,
		asset.ID.String(), asset.Name, string(asset.Category), asset.Valuation,
		asset.MetadataURI, custodianValue(asset.Custodian), string(asset.Status),
		tokenContractValue(asset.TokenContract), text, numeric, streams,
		asset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id domain.AssetID) (Asset, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1`, id.String())
	return scanAsset(row)
}

func (s *PostgresStore) FindByTokenContract(ctx context.Context, token domain.TokenID) (Asset, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE token_contract = $1`, token.String())
	return scanAsset(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]Asset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+assetColumns+` FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func scanAsset(row pgx.Row) (Asset, error) {
	var (
		asset         Asset
		id            string
		category      string
		custodian     *string
		status        string
		tokenContract *string
		text          []byte
		numeric       []byte
		streams       []byte
	)
	err := row.Scan(&id, &asset.Name, &category, &asset.Valuation,
		&asset.MetadataURI, &custodian, &status, &tokenContract,
		&text, &numeric, &streams, &asset.CreatedAt, &asset.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Asset{}, fmt.Errorf("scan asset: %w", err)
	}

	if asset.ID, err = domain.ParseAssetID(id); err != nil {
		return Asset{}, err
	}
	asset.Category = Category(category)
	asset.Status = Status(status)
	if custodian != nil {
		if asset.Custodian, err = domain.ParsePrincipalID(*custodian); err != nil {
			return Asset{}, err
		}
	}
	if tokenContract != nil {
		if asset.TokenContract, err = domain.ParseTokenID(*tokenContract); err != nil {
			return Asset{}, err
		}
	}
	if err := json.Unmarshal(text, &asset.TextAttributes); err != nil {
		return Asset{}, fmt.Errorf("decode text attributes: %w", err)
	}
	if err := json.Unmarshal(numeric, &asset.NumericAttributes); err != nil {
		return Asset{}, fmt.Errorf("decode numeric attributes: %w", err)
	}
	if err := json.Unmarshal(streams, &asset.RevenueStreams); err != nil {
		return Asset{}, fmt.Errorf("decode revenue streams: %w", err)
	}
	return asset, nil
}

func marshalAssetDocs(asset Asset) (text, numeric, streams []byte, err error) {
	if text, err = json.Marshal(asset.TextAttributes); err != nil {
		return nil, nil, nil, fmt.Errorf("encode text attributes: %w", err)
	}
	if numeric, err = json.Marshal(asset.NumericAttributes); err != nil {
		return nil, nil, nil, fmt.Errorf("encode numeric attributes: %w", err)
	}
	if streams, err = json.Marshal(asset.RevenueStreams); err != nil {
		return nil, nil, nil, fmt.Errorf("encode revenue streams: %w", err)
	}
	return text, numeric, streams, nil
}

func tokenContractValue(token domain.TokenID) *string {
	if token.IsNil() {
		return nil
	}
	s := token.String()
	return &s
}

func custodianValue(custodian domain.PrincipalID) *string {
	if custodian.IsNil() {
		return nil
	}
	s := custodian.String()
	return &s
}
