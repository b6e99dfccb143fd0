package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ServidorRepository handles staff data access.
type ServidorRepository struct {
	pool *pgxpool.Pool
}

// NewServidorRepository creates a new ServidorRepository.
func NewServidorRepository(pool *pgxpool.Pool) *ServidorRepository {
	return &ServidorRepository{pool: pool}
}

const servidorSelect = `SELECT s.id, s.usuario_id, s.siape, s.nome, s.funcao, s.email, s.campus_id, s.coordenacao,
	s.membro_comissao_disciplinar, s.pode_registrar_atendimento, s.pode_visualizar_ficha_aluno, s.ativo, s.created_at
	FROM servidores s`

func scanServidor(row interface{ Scan(...interface{}) error }, s *model.Servidor) error {
	return row.Scan(&s.ID, &s.UsuarioID, &s.Siape, &s.Nome, &s.Funcao, &s.Email, &s.CampusID, &s.Coordenacao,
		&s.MembroComissaoDisciplinar, &s.PodeRegistrarAtendimento, &s.PodeVisualizarFichaAluno, &s.Ativo, &s.CreatedAt)
}

func (r *ServidorRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.Servidor, error) {
	s := &model.Servidor{}
	if err := scanServidor(r.pool.QueryRow(ctx, servidorSelect+where, arg), s); err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *ServidorRepository) GetByID(ctx context.Context, id int) (*model.Servidor, error) {
	return r.getOne(ctx, ` WHERE s.id = $1`, id)
}

// GetByUsuarioID returns the staff profile of a login account.
func (r *ServidorRepository) GetByUsuarioID(ctx context.Context, usuarioID int) (*model.Servidor, error) {
	return r.getOne(ctx, ` WHERE s.usuario_id = $1`, usuarioID)
}

func (r *ServidorRepository) GetBySiape(ctx context.Context, siape string) (*model.Servidor, error) {
	return r.getOne(ctx, ` WHERE s.siape = $1`, siape)
}

func buildServidorFilter(sf model.ServidorFilter) filter {
	var f filter
	if sf.Coordenacao != "" {
		f.add(`s.coordenacao = ?`, sf.Coordenacao)
	}
	if sf.Comissao != nil {
		f.add(`s.membro_comissao_disciplinar = ?`, *sf.Comissao)
	}
	if sf.Busca != "" {
		f.add(`(s.nome ILIKE ? OR s.siape ILIKE ? OR s.email ILIKE ?)`, "%"+sf.Busca+"%")
	}
	if sf.SoAtivos {
		f.addRaw(`s.ativo`)
	}
	return f
}

// ListPaginated retrieves staff members matching the filter.
func (r *ServidorRepository) ListPaginated(ctx context.Context, sf model.ServidorFilter, limit, offset int) ([]model.Servidor, int, error) {
	f := buildServidorFilter(sf)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM servidores s`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	list, err := r.query(ctx, servidorSelect+f.where()+` ORDER BY s.nome`+paging, args...)
	return list, total, err
}

// List retrieves every staff member matching the filter, for pickers.
func (r *ServidorRepository) List(ctx context.Context, sf model.ServidorFilter) ([]model.Servidor, error) {
	f := buildServidorFilter(sf)
	return r.query(ctx, servidorSelect+f.where()+` ORDER BY s.nome`, f.args...)
}

func (r *ServidorRepository) query(ctx context.Context, sql string, args ...interface{}) ([]model.Servidor, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Servidor
	for rows.Next() {
		var s model.Servidor
		if err := scanServidor(rows, &s); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *ServidorRepository) Create(ctx context.Context, s *model.Servidor) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO servidores (usuario_id, siape, nome, funcao, email, campus_id, coordenacao,
		 membro_comissao_disciplinar, pode_registrar_atendimento, pode_visualizar_ficha_aluno, ativo)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_at`,
		s.UsuarioID, s.Siape, s.Nome, s.Funcao, s.Email, s.CampusID, s.Coordenacao,
		s.MembroComissaoDisciplinar, s.PodeRegistrarAtendimento, s.PodeVisualizarFichaAluno, s.Ativo,
	).Scan(&s.ID, &s.CreatedAt))
}

func (r *ServidorRepository) Update(ctx context.Context, s *model.Servidor) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE servidores SET usuario_id = $1, siape = $2, nome = $3, funcao = $4, email = $5, campus_id = $6,
		 coordenacao = $7, membro_comissao_disciplinar = $8, pode_registrar_atendimento = $9,
		 pode_visualizar_ficha_aluno = $10, ativo = $11
		 WHERE id = $12`,
		s.UsuarioID, s.Siape, s.Nome, s.Funcao, s.Email, s.CampusID, s.Coordenacao,
		s.MembroComissaoDisciplinar, s.PodeRegistrarAtendimento, s.PodeVisualizarFichaAluno, s.Ativo, s.ID,
	))
}

func (r *ServidorRepository) Deactivate(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `UPDATE servidores SET ativo = FALSE WHERE id = $1`, id))
}

// ─── Notification recipients ───────────────────────────────────────────

const destinatarioSelect = `SELECT s.usuario_id, s.id, s.nome, s.email
	FROM servidores s JOIN usuarios u ON u.id = s.usuario_id
	WHERE s.ativo AND u.ativo`

func (r *ServidorRepository) queryDestinatarios(ctx context.Context, sql string, args ...interface{}) ([]model.Destinatario, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Destinatario
	for rows.Next() {
		var d model.Destinatario
		if err := rows.Scan(&d.UsuarioID, &d.ServidorID, &d.Nome, &d.Email); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ListDestinatariosComissao returns the disciplinary committee members with a login.
func (r *ServidorRepository) ListDestinatariosComissao(ctx context.Context) ([]model.Destinatario, error) {
	return r.queryDestinatarios(ctx, destinatarioSelect+` AND s.membro_comissao_disciplinar ORDER BY s.nome`)
}

// ListDestinatariosByCoordenacoes returns staff with a login in any of the sectors.
func (r *ServidorRepository) ListDestinatariosByCoordenacoes(ctx context.Context, coords []model.Coordenacao) ([]model.Destinatario, error) {
	codes := make([]string, len(coords))
	for i, c := range coords {
		codes[i] = string(c)
	}
	return r.queryDestinatarios(ctx, destinatarioSelect+` AND s.coordenacao = ANY($1) ORDER BY s.nome`, codes)
}

// GetDestinatario returns the recipient data of one staff member.
func (r *ServidorRepository) GetDestinatario(ctx context.Context, servidorID int) (*model.Destinatario, error) {
	list, err := r.queryDestinatarios(ctx, destinatarioSelect+` AND s.id = $1`, servidorID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}
