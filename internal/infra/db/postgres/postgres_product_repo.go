package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
)

var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct{ pool *pgxpool.Pool }

func NewProductRepo(pool *pgxpool.Pool) *productRepo {
	return &productRepo{pool: pool}
}

const productColumns = `id, name, description, price, type, file_url, telegram_link, telegram_chat_id, image_url, is_active, created_at, updated_at`

func (r *productRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	const q = `
INSERT INTO products (` + productColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  name=$2, description=$3, price=$4, type=$5, file_url=$6, telegram_link=$7,
  telegram_chat_id=$8, image_url=$9, is_active=$10, updated_at=NOW();`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Name, p.Description, p.Price, string(p.Type), p.FileURL, p.TelegramLink,
		p.TelegramChatID, p.ImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt)
	return mapExecErr(err)
}

func (r *productRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(row)
	if err != nil {
		return nil, mapScanErr(err, domain.ErrProductNotFound)
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context, tx repository.Tx, onlyActive bool) ([]*model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	if onlyActive {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM products`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	var typ string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &typ, &p.FileURL, &p.TelegramLink,
		&p.TelegramChatID, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Type = model.ProductType(typ)
	return &p, nil
}
