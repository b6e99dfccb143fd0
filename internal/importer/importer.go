package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Result summarizes one import run.
type Result struct {
	Total       int        `json:"total"`
	Criados     int        `json:"criados"`
	Atualizados int        `json:"atualizados"`
	Ignorados   int        `json:"ignorados"`
	Erros       []RowError `json:"erros"`
}

func (r *Result) fail(line int, format string, args ...interface{}) {
	r.Erros = append(r.Erros, RowError{Line: line, Message: fmt.Sprintf(format, args...)})
}

// RapidaRegistrar persists an imported quick occurrence and refreshes its alerts.
type RapidaRegistrar interface {
	Registrar(ctx context.Context, r *model.OcorrenciaRapida) error
}

// PasswordHasher hashes the initial password of imported logins.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// Importer writes parsed rows through the repositories. A failing row is
// recorded in the result and the import moves on.
type Importer struct {
	estudantes   *repository.EstudanteRepository
	responsaveis *repository.ResponsavelRepository
	servidores   *repository.ServidorRepository
	usuarios     *repository.UsuarioRepository
	roles        *repository.RoleRepository
	campi        *repository.CampusRepository
	catalogo     *repository.CatalogoRepository
	pedagogico   *repository.PedagogicoRepository
	rapidasRepo  *repository.OcorrenciaRapidaRepository
	rapidas      RapidaRegistrar
	hasher       PasswordHasher
	log          zerolog.Logger
}

// Deps groups the collaborators of an Importer.
type Deps struct {
	Estudantes   *repository.EstudanteRepository
	Responsaveis *repository.ResponsavelRepository
	Servidores   *repository.ServidorRepository
	Usuarios     *repository.UsuarioRepository
	Roles        *repository.RoleRepository
	Campi        *repository.CampusRepository
	Catalogo     *repository.CatalogoRepository
	Pedagogico   *repository.PedagogicoRepository
	RapidasRepo  *repository.OcorrenciaRapidaRepository
	Rapidas      RapidaRegistrar
	Hasher       PasswordHasher
}

func New(d Deps, log zerolog.Logger) *Importer {
	return &Importer{
		estudantes:   d.Estudantes,
		responsaveis: d.Responsaveis,
		servidores:   d.Servidores,
		usuarios:     d.Usuarios,
		roles:        d.Roles,
		campi:        d.Campi,
		catalogo:     d.Catalogo,
		pedagogico:   d.Pedagogico,
		rapidasRepo:  d.RapidasRepo,
		rapidas:      d.Rapidas,
		hasher:       d.Hasher,
		log:          log.With().Str("component", "importer").Logger(),
	}
}

// turmaCache resolves class names once per run.
type turmaCache struct {
	repo  *repository.CampusRepository
	byKey map[string]*model.Turma
}

func (c *turmaCache) get(ctx context.Context, nome string) (*model.Turma, error) {
	key := strings.ToLower(strings.TrimSpace(nome))
	if t, ok := c.byKey[key]; ok {
		return t, nil
	}
	t, err := c.repo.FindTurmaByNome(ctx, nome)
	if err != nil {
		return nil, err
	}
	c.byKey[key] = t
	return t, nil
}

func (i *Importer) newTurmaCache() *turmaCache {
	return &turmaCache{repo: i.campi, byKey: make(map[string]*model.Turma)}
}

// ─── Estudantes ────────────────────────────────────────────────────────

func (i *Importer) ImportEstudantes(ctx context.Context, rows []Row) *Result {
	records, errs := ParseEstudantes(rows)
	res := &Result{Total: len(rows), Erros: errs}
	turmas := i.newTurmaCache()

	for _, rec := range records {
		e := rec.Estudante
		if rec.Turma != "" {
			t, err := turmas.get(ctx, rec.Turma)
			if err != nil {
				res.fail(rec.Line, "turma não encontrada: %q", rec.Turma)
				continue
			}
			e.TurmaID = &t.ID
			e.CursoID = &t.CursoID
		}

		inserted, err := i.estudantes.UpsertByMatricula(ctx, &e)
		if err != nil {
			res.fail(rec.Line, "erro ao salvar estudante %s: %v", e.MatriculaSGA, err)
			continue
		}
		if inserted {
			res.Criados++
		} else {
			res.Atualizados++
		}
	}
	i.logResult("estudantes", res)
	return res
}

// ─── Responsáveis ──────────────────────────────────────────────────────

func (i *Importer) ImportResponsaveis(ctx context.Context, rows []Row) *Result {
	records, errs := ParseResponsaveis(rows)
	res := &Result{Total: len(rows), Erros: errs}

	for _, rec := range records {
		est, err := i.estudantes.GetByMatricula(ctx, rec.Matricula)
		if err != nil {
			res.fail(rec.Line, "estudante com matrícula %s não encontrado", rec.Matricula)
			continue
		}

		resp := rec.Responsavel
		existing, err := i.findResponsavel(ctx, resp.Email)
		switch {
		case err != nil:
			res.fail(rec.Line, "erro ao buscar responsável: %v", err)
			continue
		case existing != nil:
			resp.ID = existing.ID
			if err := i.responsaveis.Update(ctx, &resp); err != nil {
				res.fail(rec.Line, "erro ao atualizar responsável: %v", err)
				continue
			}
			res.Atualizados++
		default:
			if err := i.responsaveis.Create(ctx, &resp); err != nil {
				res.fail(rec.Line, "erro ao criar responsável: %v", err)
				continue
			}
			res.Criados++
		}

		if err := i.responsaveis.Link(ctx, est.ID, resp.ID); err != nil {
			res.fail(rec.Line, "erro ao vincular responsável: %v", err)
		}
	}
	i.logResult("responsaveis", res)
	return res
}

func (i *Importer) findResponsavel(ctx context.Context, email string) (*model.Responsavel, error) {
	if email == "" {
		return nil, nil
	}
	r, err := i.responsaveis.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return r, err
}

// ─── Servidores ────────────────────────────────────────────────────────

func (i *Importer) ImportServidores(ctx context.Context, rows []Row, campusID *int) *Result {
	records, errs := ParseServidores(rows)
	res := &Result{Total: len(rows), Erros: errs}

	roleID, err := i.roles.GetRoleIDByName(ctx, model.RoleServidor)
	if err != nil {
		i.log.Warn().Err(err).Msg("Servidor role missing, logins will not be created")
	}

	for _, rec := range records {
		s := rec.Servidor
		s.CampusID = campusID

		existing, err := i.servidores.GetBySiape(ctx, s.Siape)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			res.fail(rec.Line, "erro ao buscar servidor: %v", err)
			continue
		}

		if existing != nil {
			s.ID = existing.ID
			s.UsuarioID = existing.UsuarioID
		}
		if s.UsuarioID == nil && rec.Senha != "" && roleID > 0 {
			uid, err := i.createLogin(ctx, s, rec.Senha, roleID)
			if err != nil {
				res.fail(rec.Line, "erro ao criar usuário %s: %v", s.Siape, err)
				continue
			}
			s.UsuarioID = &uid
		}

		if existing != nil {
			if err := i.servidores.Update(ctx, &s); err != nil {
				res.fail(rec.Line, "erro ao atualizar servidor: %v", err)
				continue
			}
			res.Atualizados++
			continue
		}
		if err := i.servidores.Create(ctx, &s); err != nil {
			res.fail(rec.Line, "erro ao criar servidor: %v", err)
			continue
		}
		res.Criados++
	}
	i.logResult("servidores", res)
	return res
}

func (i *Importer) createLogin(ctx context.Context, s model.Servidor, senha string, roleID int) (int, error) {
	hash, err := i.hasher.HashPassword(senha)
	if err != nil {
		return 0, err
	}
	u := model.Usuario{
		Username:     s.Siape,
		Email:        s.Email,
		Nome:         s.Nome,
		PasswordHash: hash,
		RoleID:       roleID,
		Ativo:        true,
	}
	if err := i.usuarios.Create(ctx, &u); err != nil {
		return 0, err
	}
	return u.ID, nil
}

// ─── Disciplinas ───────────────────────────────────────────────────────

func (i *Importer) ImportDisciplinas(ctx context.Context, rows []Row) *Result {
	records, errs := ParseDisciplinas(rows)
	res := &Result{Total: len(rows), Erros: errs}

	for _, rec := range records {
		d := rec.Disciplina
		if rec.Curso != "" {
			c, err := i.campi.GetCursoByCodigo(ctx, rec.Curso)
			if err != nil {
				res.fail(rec.Line, "curso não encontrado: %q", rec.Curso)
				continue
			}
			d.CursoID = &c.ID
		}

		inserted, err := i.pedagogico.UpsertDisciplina(ctx, &d)
		if err != nil {
			res.fail(rec.Line, "erro ao salvar disciplina %s: %v", d.Codigo, err)
			continue
		}
		if inserted {
			res.Criados++
		} else {
			res.Atualizados++
		}
	}
	i.logResult("disciplinas", res)
	return res
}

// ─── Ocorrências rápidas ───────────────────────────────────────────────

// ImportRapidas registers one quick occurrence per row on behalf of servidorID.
// Rows duplicating an existing (date, student, type) are skipped.
func (i *Importer) ImportRapidas(ctx context.Context, rows []Row, servidorID int) *Result {
	records, errs := ParseRapidas(rows)
	res := &Result{Total: len(rows), Erros: errs}
	turmas := i.newTurmaCache()
	tipos := make(map[string]*model.TipoOcorrenciaRapida)

	for _, rec := range records {
		tipo, ok := tipos[rec.Tipo]
		if !ok {
			t, err := i.catalogo.GetTipoRapidoByCodigo(ctx, rec.Tipo)
			if err != nil {
				res.fail(rec.Line, "tipo de ocorrência não mapeado: %q", rec.Tipo)
				continue
			}
			tipo = t
			tipos[rec.Tipo] = t
		}

		var turma *model.Turma
		if rec.Turma != "" {
			t, err := turmas.get(ctx, rec.Turma)
			if err != nil {
				res.fail(rec.Line, "turma não encontrada: %q", rec.Turma)
				continue
			}
			turma = t
		}

		est, err := i.findEstudante(ctx, rec, turma)
		if err != nil {
			res.fail(rec.Line, "%v", err)
			continue
		}

		n, err := i.rapidasRepo.Count(ctx, est.ID, tipo.ID, rec.Data, rec.Data.AddDays(1))
		if err != nil {
			res.fail(rec.Line, "erro ao verificar duplicidade: %v", err)
			continue
		}
		if n > 0 {
			res.Ignorados++
			continue
		}

		r := &model.OcorrenciaRapida{
			Data:                  rec.Data,
			Horario:               rec.Horario,
			EstudanteIDs:          []int{est.ID},
			TipoIDs:               []int{tipo.ID},
			Descricao:             tipo.Descricao,
			ResponsavelRegistroID: servidorID,
		}
		if turma != nil {
			r.TurmaID = &turma.ID
		} else {
			r.TurmaID = est.TurmaID
		}

		if err := i.rapidas.Registrar(ctx, r); err != nil {
			res.fail(rec.Line, "erro ao registrar ocorrência: %v", err)
			continue
		}
		res.Criados++
	}
	i.logResult("ocorrencias_rapidas", res)
	return res
}

func (i *Importer) findEstudante(ctx context.Context, rec RapidaRecord, turma *model.Turma) (*model.Estudante, error) {
	if rec.Matricula != "" {
		e, err := i.estudantes.GetByMatricula(ctx, rec.Matricula)
		if err != nil {
			return nil, fmt.Errorf("estudante com matrícula %s não encontrado", rec.Matricula)
		}
		return e, nil
	}

	ef := model.EstudanteFilter{Busca: rec.Nome}
	if turma != nil {
		ef.TurmaID = &turma.ID
	}
	found, err := i.estudantes.Search(ctx, ef, 10)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar estudante: %v", err)
	}
	for idx := range found {
		if strings.EqualFold(found[idx].Nome, rec.Nome) {
			return &found[idx], nil
		}
	}
	if len(found) == 1 {
		return &found[0], nil
	}
	return nil, fmt.Errorf("estudante não encontrado: %q", rec.Nome)
}

func (i *Importer) logResult(kind string, res *Result) {
	i.log.Info().
		Str("kind", kind).
		Int("total", res.Total).
		Int("criados", res.Criados).
		Int("atualizados", res.Atualizados).
		Int("ignorados", res.Ignorados).
		Int("erros", len(res.Erros)).
		Msg("Import finished")
}
