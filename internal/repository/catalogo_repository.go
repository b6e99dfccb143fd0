package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogoRepository handles the disciplinary catalogs: infrações, sanções
// and quick occurrence types.
type CatalogoRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogoRepository creates a new CatalogoRepository.
func NewCatalogoRepository(pool *pgxpool.Pool) *CatalogoRepository {
	return &CatalogoRepository{pool: pool}
}

// ─── Infrações ─────────────────────────────────────────────────────────

const infracaoSelect = `SELECT id, codigo, descricao, gravidade, referencia_artigo, ativo, created_at FROM infracoes`

func scanInfracao(row interface{ Scan(...interface{}) error }, i *model.Infracao) error {
	return row.Scan(&i.ID, &i.Codigo, &i.Descricao, &i.Gravidade, &i.ReferenciaArtigo, &i.Ativo, &i.CreatedAt)
}

func (r *CatalogoRepository) ListInfracoes(ctx context.Context, soAtivas bool) ([]model.Infracao, error) {
	query := infracaoSelect
	if soAtivas {
		query += ` WHERE ativo`
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY codigo`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Infracao
	for rows.Next() {
		var i model.Infracao
		if err := scanInfracao(rows, &i); err != nil {
			return nil, err
		}
		list = append(list, i)
	}
	return list, rows.Err()
}

func (r *CatalogoRepository) GetInfracao(ctx context.Context, id int) (*model.Infracao, error) {
	i := &model.Infracao{}
	if err := scanInfracao(r.pool.QueryRow(ctx, infracaoSelect+` WHERE id = $1`, id), i); err != nil {
		return nil, mapErr(err)
	}
	return i, nil
}

func (r *CatalogoRepository) CreateInfracao(ctx context.Context, i *model.Infracao) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO infracoes (codigo, descricao, gravidade, referencia_artigo, ativo)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		i.Codigo, i.Descricao, i.Gravidade, i.ReferenciaArtigo, i.Ativo,
	).Scan(&i.ID, &i.CreatedAt))
}

func (r *CatalogoRepository) UpdateInfracao(ctx context.Context, i *model.Infracao) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE infracoes SET codigo = $1, descricao = $2, gravidade = $3, referencia_artigo = $4, ativo = $5
		 WHERE id = $6`,
		i.Codigo, i.Descricao, i.Gravidade, i.ReferenciaArtigo, i.Ativo, i.ID,
	))
}

func (r *CatalogoRepository) DeactivateInfracao(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `UPDATE infracoes SET ativo = FALSE WHERE id = $1`, id))
}

// ─── Sanções ───────────────────────────────────────────────────────────

const sancaoSelect = `SELECT s.id, s.tipo, s.descricao, s.created_at,
	ARRAY(SELECT infracao_id FROM sancao_infracoes si WHERE si.sancao_id = s.id ORDER BY infracao_id)
	FROM sancoes s`

func scanSancao(row interface{ Scan(...interface{}) error }, s *model.Sancao) error {
	return row.Scan(&s.ID, &s.Tipo, &s.Descricao, &s.CreatedAt, &s.InfracaoIDs)
}

func (r *CatalogoRepository) ListSancoes(ctx context.Context) ([]model.Sancao, error) {
	rows, err := r.pool.Query(ctx, sancaoSelect+` ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Sancao
	for rows.Next() {
		var s model.Sancao
		if err := scanSancao(rows, &s); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *CatalogoRepository) GetSancao(ctx context.Context, id int) (*model.Sancao, error) {
	s := &model.Sancao{}
	if err := scanSancao(r.pool.QueryRow(ctx, sancaoSelect+` WHERE s.id = $1`, id), s); err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *CatalogoRepository) CreateSancao(ctx context.Context, s *model.Sancao) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO sancoes (tipo, descricao) VALUES ($1, $2) RETURNING id, created_at`,
			s.Tipo, s.Descricao,
		).Scan(&s.ID, &s.CreatedAt); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "sancao_infracoes", "sancao_id", "infracao_id", s.ID, s.InfracaoIDs)
	}))
}

func (r *CatalogoRepository) UpdateSancao(ctx context.Context, s *model.Sancao) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := execAffected(tx.Exec(ctx,
			`UPDATE sancoes SET tipo = $1, descricao = $2 WHERE id = $3`, s.Tipo, s.Descricao, s.ID,
		)); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "sancao_infracoes", "sancao_id", "infracao_id", s.ID, s.InfracaoIDs)
	}))
}

// DeleteSancao removes a sanction that no occurrence references.
func (r *CatalogoRepository) DeleteSancao(ctx context.Context, id int) error {
	var used bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ocorrencias WHERE sancao_id = $1)`, id).Scan(&used); err != nil {
		return err
	}
	if used {
		return ErrReferenced
	}
	return execAffected(r.pool.Exec(ctx, `DELETE FROM sancoes WHERE id = $1`, id))
}

// ─── Tipos de ocorrência rápida ────────────────────────────────────────

const tipoRapidaSelect = `SELECT id, codigo, descricao, ativo, created_at FROM tipos_ocorrencia_rapida`

func scanTipoRapida(row interface{ Scan(...interface{}) error }, t *model.TipoOcorrenciaRapida) error {
	return row.Scan(&t.ID, &t.Codigo, &t.Descricao, &t.Ativo, &t.CreatedAt)
}

func (r *CatalogoRepository) ListTiposRapidos(ctx context.Context, soAtivos bool) ([]model.TipoOcorrenciaRapida, error) {
	query := tipoRapidaSelect
	if soAtivos {
		query += ` WHERE ativo`
	}
	return r.queryTiposRapidos(ctx, query+` ORDER BY descricao`)
}

// GetTiposRapidosByIDs returns the given types in ID order.
func (r *CatalogoRepository) GetTiposRapidosByIDs(ctx context.Context, ids []int) ([]model.TipoOcorrenciaRapida, error) {
	return r.queryTiposRapidos(ctx, tipoRapidaSelect+` WHERE id = ANY($1) ORDER BY id`, ids)
}

func (r *CatalogoRepository) queryTiposRapidos(ctx context.Context, query string, args ...interface{}) ([]model.TipoOcorrenciaRapida, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.TipoOcorrenciaRapida
	for rows.Next() {
		var t model.TipoOcorrenciaRapida
		if err := scanTipoRapida(rows, &t); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *CatalogoRepository) GetTipoRapidoByCodigo(ctx context.Context, codigo string) (*model.TipoOcorrenciaRapida, error) {
	t := &model.TipoOcorrenciaRapida{}
	if err := scanTipoRapida(r.pool.QueryRow(ctx, tipoRapidaSelect+` WHERE UPPER(codigo) = UPPER($1)`, codigo), t); err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (r *CatalogoRepository) CreateTipoRapido(ctx context.Context, t *model.TipoOcorrenciaRapida) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO tipos_ocorrencia_rapida (codigo, descricao, ativo) VALUES ($1, $2, $3) RETURNING id, created_at`,
		t.Codigo, t.Descricao, t.Ativo,
	).Scan(&t.ID, &t.CreatedAt))
}

// EnsureTipoRapido inserts a type unless its code already exists. It reports whether a row was created.
func (r *CatalogoRepository) EnsureTipoRapido(ctx context.Context, t model.TipoOcorrenciaRapida) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO tipos_ocorrencia_rapida (codigo, descricao) VALUES ($1, $2) ON CONFLICT (codigo) DO NOTHING`,
		t.Codigo, t.Descricao,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CatalogoRepository) UpdateTipoRapido(ctx context.Context, t *model.TipoOcorrenciaRapida) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE tipos_ocorrencia_rapida SET codigo = $1, descricao = $2, ativo = $3 WHERE id = $4`,
		t.Codigo, t.Descricao, t.Ativo, t.ID,
	))
}

func (r *CatalogoRepository) DeactivateTipoRapido(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `UPDATE tipos_ocorrencia_rapida SET ativo = FALSE WHERE id = $1`, id))
}
