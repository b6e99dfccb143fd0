package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/signintech/gopdf"
)

// ErrTipoDocumentoInvalido is returned for a document type that does not
// apply to the requested owner.
var ErrTipoDocumentoInvalido = errors.New("invalid document type")

const (
	fontRegular = "regular"
	fontBold    = "bold"

	a4Margin     = 50.0
	a4PageBottom = 841.89 - 60

	// 80mm thermal paper.
	reciboWidth  = 226.77
	reciboMargin = 10.0
)

// DocumentoService renders PDF documents and keeps track of them.
type DocumentoService struct {
	repo        *repository.OcorrenciaRepository
	rapidas     *repository.OcorrenciaRapidaRepository
	estudantes  *repository.EstudanteRepository
	catalogo    *repository.CatalogoRepository
	dir         string
	fontPath    string
	boldPath    string
	instituicao string
	log         zerolog.Logger
}

// NewDocumentoService creates a new DocumentoService.
func NewDocumentoService(
	cfg *config.Config,
	repo *repository.OcorrenciaRepository,
	rapidas *repository.OcorrenciaRapidaRepository,
	estudantes *repository.EstudanteRepository,
	catalogo *repository.CatalogoRepository,
	log zerolog.Logger,
) *DocumentoService {
	return &DocumentoService{
		repo:        repo,
		rapidas:     rapidas,
		estudantes:  estudantes,
		catalogo:    catalogo,
		dir:         filepath.Join(cfg.UploadDir, "documentos"),
		fontPath:    cfg.PDFFontPath,
		boldPath:    cfg.PDFFontBoldPath,
		instituicao: cfg.InstitutionName,
		log:         log.With().Str("component", "documento_service").Logger(),
	}
}

// List returns the documents of an occurrence or, when rapida is set, of a quick occurrence.
func (s *DocumentoService) List(ctx context.Context, ownerID int, rapida bool) ([]model.DocumentoGerado, error) {
	items, err := s.repo.ListDocumentos(ctx, ownerID, rapida)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.DocumentoGerado{}
	}
	return items, nil
}

// Open returns the document record and the absolute path of its file.
func (s *DocumentoService) Open(ctx context.Context, id int) (*model.DocumentoGerado, string, error) {
	d, err := s.repo.GetDocumento(ctx, id)
	if err != nil {
		return nil, "", err
	}
	path := filepath.Join(s.dir, filepath.Base(d.Arquivo))
	if _, err := os.Stat(path); err != nil {
		return nil, "", fmt.Errorf("stat documento: %w", repository.ErrNotFound)
	}
	return d, path, nil
}

// GerarOcorrencia renders an A4 document of the given type for an occurrence,
// stores the file and records it with the acting servidor as signer.
func (s *DocumentoService) GerarOcorrencia(ctx context.Context, actor Actor, ocorrenciaID int, tipo model.TipoDocumento) (*model.DocumentoGerado, error) {
	if tipo == model.DocumentoReciboTermico {
		return nil, ErrTipoDocumentoInvalido
	}
	servidorID, err := actor.Servidor()
	if err != nil {
		return nil, err
	}
	o, err := s.repo.GetByID(ctx, ocorrenciaID)
	if err != nil {
		return nil, err
	}
	estudantes, err := s.estudantes.ListByIDs(ctx, o.EstudanteIDs)
	if err != nil {
		return nil, fmt.Errorf("load estudantes: %w", err)
	}
	var infracao *model.Infracao
	if o.InfracaoID != nil {
		if infracao, err = s.catalogo.GetInfracao(ctx, *o.InfracaoID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("load infracao: %w", err)
		}
	}
	var comissao *model.Comissao
	if tipo == model.DocumentoParecer {
		if comissao, err = s.repo.GetComissao(ctx, o.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("load comissao: %w", err)
		}
	}

	doc := &ocorrenciaPDF{
		o:           o,
		tipo:        tipo,
		estudantes:  estudantes,
		infracao:    infracao,
		comissao:    comissao,
		instituicao: s.instituicao,
		now:         time.Now(),
	}
	data, err := s.render(gopdf.Config{PageSize: *gopdf.PageSizeA4}, doc.write)
	if err != nil {
		return nil, err
	}

	d := &model.DocumentoGerado{OcorrenciaID: &o.ID, Tipo: tipo, AssinadoPorID: &servidorID}
	if err := s.store(ctx, d, fmt.Sprintf("ocorrencia_%d_%s", o.ID, strings.ToLower(string(tipo))), data); err != nil {
		return nil, err
	}
	s.log.Info().Int("ocorrencia_id", o.ID).Str("tipo", string(tipo)).Msg("Documento generated")
	return d, nil
}

// GerarRecibo renders the 80mm thermal receipt of a quick occurrence.
func (s *DocumentoService) GerarRecibo(ctx context.Context, actor Actor, rapidaID int) (*model.DocumentoGerado, error) {
	r, err := s.rapidas.GetByID(ctx, rapidaID)
	if err != nil {
		return nil, err
	}
	estudantes, err := s.estudantes.ListByIDs(ctx, r.EstudanteIDs)
	if err != nil {
		return nil, fmt.Errorf("load estudantes: %w", err)
	}
	tipos, err := s.catalogo.GetTiposRapidosByIDs(ctx, r.TipoIDs)
	if err != nil {
		return nil, fmt.Errorf("load tipos: %w", err)
	}

	rec := &reciboPDF{r: r, estudantes: estudantes, tipos: tipos, now: time.Now()}
	// Thermal paper is continuous; size the page to the content.
	height := 260.0 + 14*float64(len(estudantes)+len(tipos)) + 12*float64(len(r.Descricao)/40)
	cfg := gopdf.Config{PageSize: gopdf.Rect{W: reciboWidth, H: height}}
	data, err := s.render(cfg, rec.write)
	if err != nil {
		return nil, err
	}

	d := &model.DocumentoGerado{OcorrenciaRapidaID: &r.ID, Tipo: model.DocumentoReciboTermico, AssinadoPorID: actor.ServidorID}
	if err := s.store(ctx, d, fmt.Sprintf("rapida_%d_recibo", r.ID), data); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DocumentoService) render(cfg gopdf.Config, write func(*pdfWriter) error) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(cfg)
	if err := pdf.AddTTFFont(fontRegular, s.fontPath); err != nil {
		return nil, fmt.Errorf("load font %s: %w", s.fontPath, err)
	}
	bold := s.boldPath
	if _, err := os.Stat(bold); err != nil {
		bold = s.fontPath
	}
	if err := pdf.AddTTFFont(fontBold, bold); err != nil {
		return nil, fmt.Errorf("load font %s: %w", bold, err)
	}
	pdf.AddPage()

	w := &pdfWriter{pdf: pdf, width: cfg.PageSize.W}
	if err := write(w); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *DocumentoService) store(ctx context.Context, d *model.DocumentoGerado, prefix string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create documentos dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.pdf", prefix, uuid.New().String()[:8])
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write documento: %w", err)
	}
	d.Arquivo = "documentos/" + name
	if err := s.repo.CreateDocumento(ctx, d); err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return err
	}
	return nil
}

// ─── Layout ────────────────────────────────────────────────────────────

// pdfWriter is a small flowing-text layer over gopdf.
type pdfWriter struct {
	pdf    *gopdf.GoPdf
	width  float64
	margin float64
	bottom float64
	err    error
}

func (w *pdfWriter) usable() float64 { return w.width - 2*w.margin }

func (w *pdfWriter) font(name string, size float64) {
	if w.err == nil {
		w.err = w.pdf.SetFont(name, "", size)
	}
}

func (w *pdfWriter) space(h float64) {
	w.pdf.SetY(w.pdf.GetY() + h)
}

func (w *pdfWriter) pageBreak(lineHeight float64) {
	if w.bottom > 0 && w.pdf.GetY()+lineHeight > w.bottom {
		w.pdf.AddPage()
		w.pdf.SetY(a4Margin)
	}
}

// text writes s wrapped to the usable width.
func (w *pdfWriter) text(s string, align int, lineHeight float64) {
	if w.err != nil {
		return
	}
	for _, para := range strings.Split(s, "\n") {
		lines := []string{""}
		if strings.TrimSpace(para) != "" {
			var err error
			if lines, err = w.pdf.SplitText(para, w.usable()); err != nil {
				w.err = err
				return
			}
		}
		for _, line := range lines {
			w.pageBreak(lineHeight)
			w.pdf.SetX(w.margin)
			rect := &gopdf.Rect{W: w.usable(), H: lineHeight}
			if err := w.pdf.CellWithOption(rect, line, gopdf.CellOption{Align: align}); err != nil {
				w.err = err
				return
			}
			w.pdf.Br(lineHeight)
		}
	}
}

// field writes a bold label followed by its value on the same line.
func (w *pdfWriter) field(label, value string) {
	if w.err != nil {
		return
	}
	w.pageBreak(16)
	w.font(fontBold, 10)
	w.pdf.SetX(w.margin)
	labelW, err := w.pdf.MeasureTextWidth(label + " ")
	if err != nil {
		w.err = err
		return
	}
	_ = w.pdf.Cell(&gopdf.Rect{W: labelW, H: 16}, label+" ")
	w.font(fontRegular, 10)
	_ = w.pdf.Cell(&gopdf.Rect{W: w.usable() - labelW, H: 16}, value)
	w.pdf.Br(16)
}

func (w *pdfWriter) divider() {
	y := w.pdf.GetY() + 4
	w.pdf.SetLineWidth(0.8)
	w.pdf.Line(w.margin, y, w.width-w.margin, y)
	w.pdf.SetY(y + 8)
}

func (w *pdfWriter) heading(s string) {
	w.space(6)
	w.font(fontBold, 11)
	w.text(s, gopdf.Left, 16)
	w.font(fontRegular, 10)
}

// ─── Ocorrência documents ──────────────────────────────────────────────

type ocorrenciaPDF struct {
	o           *model.Ocorrencia
	tipo        model.TipoDocumento
	estudantes  []model.Estudante
	infracao    *model.Infracao
	comissao    *model.Comissao
	instituicao string
	now         time.Time
}

func (d *ocorrenciaPDF) write(w *pdfWriter) error {
	w.margin = a4Margin
	w.bottom = a4PageBottom
	w.pdf.SetY(a4Margin)

	w.font(fontBold, 12)
	w.text(d.instituicao, gopdf.Center, 16)
	w.font(fontBold, 11)
	w.text("COMISSÃO DISCIPLINAR ESTUDANTIL", gopdf.Center, 16)
	w.divider()

	switch d.tipo {
	case model.DocumentoRegistro:
		d.registro(w)
	case model.DocumentoAtaAdvertencia:
		d.ataAdvertencia(w)
	case model.DocumentoTermoCompromisso:
		d.termoCompromisso(w)
	case model.DocumentoNotificacao:
		d.notificacao(w)
	case model.DocumentoParecer:
		d.parecer(w)
	default:
		d.titulo(w, "DOCUMENTO: "+string(d.tipo))
		w.field("Processo:", fmt.Sprintf("#%d", d.o.ID))
		w.field("Data do Fato:", d.o.Data.BR())
		w.field("Status:", d.o.Status.Label())
	}

	d.rodape(w)
	return w.err
}

func (d *ocorrenciaPDF) titulo(w *pdfWriter, s string) {
	w.space(8)
	w.font(fontBold, 14)
	w.text(s, gopdf.Center, 20)
	w.space(10)
	w.font(fontRegular, 10)
}

func (d *ocorrenciaPDF) nomes() string {
	nomes := make([]string, 0, len(d.estudantes))
	for _, e := range d.estudantes {
		nomes = append(nomes, e.Nome)
	}
	return strings.Join(nomes, ", ")
}

func (d *ocorrenciaPDF) gravidade() string {
	if d.infracao == nil {
		return "não classificada"
	}
	return strings.ToLower(string(d.infracao.Gravidade))
}

func (d *ocorrenciaPDF) registro(w *pdfWriter) {
	d.titulo(w, "REGISTRO DE OCORRÊNCIA DISCIPLINAR")
	w.field("Número:", fmt.Sprintf("#%d", d.o.ID))
	w.field("Data do Fato:", d.o.Data.BR())
	w.field("Horário:", d.o.Horario)
	w.field("Status do Processo:", d.o.Status.Label())
	w.field("Registrado por:", d.o.ResponsavelNome)

	w.heading("ESTUDANTES ENVOLVIDOS")
	for _, e := range d.estudantes {
		line := fmt.Sprintf("%s (matrícula %s)", e.Nome, e.MatriculaSGA)
		if e.TurmaNome != "" {
			line += " - Turma " + e.TurmaNome
		}
		w.text(line, gopdf.Left, 14)
	}

	w.heading("DESCRIÇÃO DETALHADA DO FATO")
	w.text(d.o.Descricao, gopdf.Left, 14)

	if d.infracao != nil {
		w.heading("INFRAÇÃO IDENTIFICADA")
		w.field("Código:", d.infracao.Codigo)
		w.field("Descrição:", d.infracao.Descricao)
		w.field("Gravidade:", string(d.infracao.Gravidade))
		if d.infracao.ReferenciaArtigo != "" {
			w.field("Referência:", d.infracao.ReferenciaArtigo)
		}
	}
	if d.o.Testemunhas != "" {
		w.heading("TESTEMUNHAS")
		w.text(d.o.Testemunhas, gopdf.Left, 14)
	}
	if d.o.MedidaPreventiva != "" {
		w.heading("MEDIDA PREVENTIVA ADOTADA")
		w.text(d.o.MedidaPreventiva, gopdf.Left, 14)
	}
}

func (d *ocorrenciaPDF) ataAdvertencia(w *pdfWriter) {
	d.titulo(w, "ATA DE ADVERTÊNCIA VERBAL")
	w.field("Processo Nº:", fmt.Sprintf("#%d", d.o.ID))
	w.field("Data:", d.now.Format("02/01/2006"))
	w.field("Estudante(s):", d.nomes())
	w.space(8)
	w.text(fmt.Sprintf(
		"Considerando a ocorrência registrada em %s, constatou-se a prática de infração disciplinar "+
			"classificada como %s, nos termos do Regulamento Discente do IFB.\n\n"+
			"Fica registrada a presente ADVERTÊNCIA VERBAL, com caráter educativo e orientador, "+
			"visando conscientizar o(s) estudante(s) sobre as normas de conduta esperadas no ambiente educacional.\n\n"+
			"Fica o(s) estudante(s) ciente(s) de que novas ocorrências poderão acarretar em medidas "+
			"disciplinares mais severas, conforme previsto no Regulamento Discente vigente.",
		d.o.Data.BR(), d.gravidade()), gopdf.Left, 14)
	d.assinaturas(w, "Servidor Registrante", d.o.ResponsavelNome, "Estudante(s)", d.nomes())
}

func (d *ocorrenciaPDF) termoCompromisso(w *pdfWriter) {
	d.titulo(w, "TERMO DE COMPROMISSO")
	w.field("Processo Nº:", fmt.Sprintf("#%d", d.o.ID))
	w.field("Estudante(s):", d.nomes())
	w.space(8)
	w.text(fmt.Sprintf(
		"Em razão da ocorrência registrada em %s, o(s) estudante(s) acima identificado(s) "+
			"compromete(m)-se a observar as normas do Regulamento Discente do IFB, zelando pelo respeito "+
			"aos colegas, servidores e ao patrimônio da instituição.\n\n"+
			"O descumprimento deste termo poderá ensejar a abertura de novo processo disciplinar.",
		d.o.Data.BR()), gopdf.Left, 14)
	d.assinaturas(w, "Servidor Responsável", d.o.ResponsavelNome, "Estudante(s) / Responsável legal", d.nomes())
}

func (d *ocorrenciaPDF) notificacao(w *pdfWriter) {
	d.titulo(w, "NOTIFICAÇÃO OFICIAL")
	w.field("Processo:", fmt.Sprintf("#%d", d.o.ID))
	w.field("Data do Fato:", d.o.Data.BR())
	w.field("Estudante(s):", d.nomes())
	w.space(8)
	w.text("Por meio deste documento, NOTIFICA-SE o(s) estudante(s) supracitado(s) sobre a abertura "+
		"de processo disciplinar referente à ocorrência registrada.\n\n"+
		"Fica(m) o(s) estudante(s) ciente(s) do direito à ampla defesa e ao contraditório, "+
		"podendo apresentar sua defesa no prazo estabelecido.", gopdf.Left, 14)
	w.space(6)
	prazo := "A definir"
	if d.o.PrazoDefesa != nil {
		prazo = d.o.PrazoDefesa.BR()
	}
	w.field("Prazo para Defesa:", prazo)
}

func (d *ocorrenciaPDF) parecer(w *pdfWriter) {
	d.titulo(w, "RELATÓRIO FINAL DO PROCESSO DISCIPLINAR")
	w.field("Processo Nº:", fmt.Sprintf("#%d", d.o.ID))
	w.field("Data de Conclusão:", d.now.Format("02/01/2006"))
	w.field("Status Final:", d.o.Status.Label())
	w.field("Estudante(s):", d.nomes())
	w.space(8)
	w.text("Este relatório apresenta a conclusão do processo disciplinar instaurado para apuração dos fatos.", gopdf.Left, 14)
	if d.comissao != nil && d.comissao.ParecerFinal != "" {
		w.heading("PARECER DA COMISSÃO")
		w.text(d.comissao.ParecerFinal, gopdf.Left, 14)
	}
	if d.o.SancaoDetalhes != "" {
		w.heading("SANÇÃO APLICADA")
		w.text(d.o.SancaoDetalhes, gopdf.Left, 14)
	}
	w.space(6)
	w.field("Decisão Final:", fmt.Sprintf("Processo %s com base nas evidências e análise realizada.", strings.ToLower(d.o.Status.Label())))
}

func (d *ocorrenciaPDF) assinaturas(w *pdfWriter, left, leftNome, right, rightNome string) {
	w.space(30)
	w.font(fontBold, 11)
	w.text("ASSINATURAS:", gopdf.Left, 16)
	w.space(40)
	w.pageBreak(60)

	half := w.usable() / 2
	y := w.pdf.GetY()
	w.pdf.SetLineWidth(0.5)
	w.pdf.Line(w.margin+10, y, w.margin+half-10, y)
	w.pdf.Line(w.margin+half+10, y, w.width-w.margin-10, y)
	w.font(fontRegular, 9)
	for i, col := range [][2]string{{left, leftNome}, {right, rightNome}} {
		x := w.margin + float64(i)*half
		w.pdf.SetXY(x, y+4)
		_ = w.pdf.CellWithOption(&gopdf.Rect{W: half, H: 12}, col[0], gopdf.CellOption{Align: gopdf.Center})
		w.pdf.SetXY(x, y+16)
		_ = w.pdf.CellWithOption(&gopdf.Rect{W: half, H: 12}, col[1], gopdf.CellOption{Align: gopdf.Center})
	}
	w.pdf.SetY(y + 32)
}

func (d *ocorrenciaPDF) rodape(w *pdfWriter) {
	w.space(20)
	w.divider()
	w.font(fontRegular, 7)
	w.text(fmt.Sprintf(
		"Documento gerado automaticamente pelo Sistema de Ocorrências IFB em %s | Processo #%d | Tipo: %s | "+
			"Comissão Disciplinar Estudantil - Instituto Federal de Brasília",
		d.now.Format("02/01/2006 às 15:04"), d.o.ID, d.tipo), gopdf.Center, 10)
}

// ─── Thermal receipt ───────────────────────────────────────────────────

type reciboPDF struct {
	r          *model.OcorrenciaRapida
	estudantes []model.Estudante
	tipos      []model.TipoOcorrenciaRapida
	now        time.Time
}

func (d *reciboPDF) write(w *pdfWriter) error {
	w.margin = reciboMargin
	w.pdf.SetY(reciboMargin)

	w.font(fontBold, 10)
	w.text("IFB - OCORRÊNCIA RÁPIDA", gopdf.Center, 14)
	w.font(fontRegular, 8)
	w.text(fmt.Sprintf("Nº %d", d.r.ID), gopdf.Center, 12)
	w.divider()

	w.text(fmt.Sprintf("Data: %s  Hora: %s", d.r.Data.BR(), d.r.Horario), gopdf.Left, 12)
	if d.r.TurmaNome != "" {
		w.text("Turma: "+d.r.TurmaNome, gopdf.Left, 12)
	}
	w.space(4)
	w.font(fontBold, 8)
	w.text("Estudante(s):", gopdf.Left, 12)
	w.font(fontRegular, 8)
	for _, e := range d.estudantes {
		w.text(fmt.Sprintf("- %s (%s)", e.Nome, e.MatriculaSGA), gopdf.Left, 12)
	}
	w.space(4)
	w.font(fontBold, 8)
	w.text("Tipo(s):", gopdf.Left, 12)
	w.font(fontRegular, 8)
	for _, t := range d.tipos {
		w.text("- "+t.Descricao, gopdf.Left, 12)
	}
	if d.r.Descricao != "" {
		w.space(4)
		w.text(d.r.Descricao, gopdf.Left, 12)
	}
	w.divider()
	w.text("Registrado por: "+d.r.ResponsavelNome, gopdf.Left, 12)
	w.space(24)
	w.pdf.Line(reciboMargin+20, w.pdf.GetY(), reciboWidth-reciboMargin-20, w.pdf.GetY())
	w.space(4)
	w.text("Assinatura do estudante", gopdf.Center, 12)
	w.font(fontRegular, 6)
	w.text("Impresso em "+d.now.Format("02/01/2006 15:04"), gopdf.Center, 10)
	return w.err
}
