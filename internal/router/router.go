package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/handler"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Usuario      *handler.UsuarioHandler
	Role         *handler.RoleHandler
	Cadastro     *handler.CadastroHandler
	Estudante    *handler.EstudanteHandler
	Ocorrencia   *handler.OcorrenciaHandler
	Rapida       *handler.RapidaHandler
	Notificacao  *handler.NotificacaoHandler
	Atendimento  *handler.AtendimentoHandler
	Refeitorio   *handler.RefeitorioHandler
	Pedagogico   *handler.PedagogicoHandler
	Napne        *handler.NapneHandler
	Projeto      *handler.ProjetoHandler
	Dashboard    *handler.DashboardHandler
	Media        *handler.MediaHandler
	Monitor      *handler.MonitorHandler
	WS           *handler.WSHandler
	System       *handler.SystemHandler
}

func perm(p model.Permission) gin.HandlerFunc {
	return middleware.RequirePermission(string(p))
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Evidence files and student photos, served with long caching.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(365*24*time.Hour, true))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)

	// ─── 1. Auth (public, rate limited) ────────────────────────────────
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	auth := router.Group("/api/v1/auth", middleware.NoStore())
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), middleware.RejectRevokedSession(authService), handlers.Auth.Me)
	}

	// ─── 2. Kiosk (public, rate limited) ───────────────────────────────
	kioskLimiter := middleware.NewRateLimiter(120, time.Minute)
	router.POST("/api/v1/refeitorio/checkin", kioskLimiter.Middleware(), handlers.Refeitorio.Checkin)

	// Photos are loaded by <img> tags, so the proxy is public.
	router.GET("/api/v1/fotos/drive", handlers.Media.ProxyFoto)

	// ─── 3. WebSocket (token in query string) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireJWT(authService), middleware.RejectRevokedSession(authService))
	{
		ws.GET("/notificacoes", handlers.WS.NotificacoesStream)
	}

	// ─── 4. Authenticated API ──────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireJWT(authService), middleware.RejectRevokedSession(authService), middleware.NoStore())

	registerAdmin(api, handlers)
	registerCadastros(api, handlers)
	registerEstudantes(api, handlers)
	registerOcorrencias(api, handlers)
	registerRapidas(api, handlers)
	registerNotificacoes(api, handlers)
	registerAtendimentos(api, handlers)
	registerRefeitorio(api, handlers)
	registerPedagogico(api, handlers)
	registerNapne(api, handlers)
	registerProjetos(api, handlers)

	dash := api.Group("/dashboard")
	{
		dash.GET("", perm(model.PermissionOcorrenciasRead), handlers.Dashboard.GetDashboardData)
		dash.GET("/comissao", middleware.RequireComissao(), handlers.Dashboard.GetComissaoData)
		dash.GET("/estatisticas", perm(model.PermissionOcorrenciasRead), handlers.Dashboard.GetEstatisticas)
	}

	return router
}

func registerAdmin(api *gin.RouterGroup, h *Handlers) {
	usuarios := api.Group("/usuarios")
	{
		usuarios.GET("", perm(model.PermissionUsuariosRead), h.Usuario.ListUsuarios)
		usuarios.GET("/:id", perm(model.PermissionUsuariosRead), h.Usuario.GetUsuario)
		usuarios.POST("", perm(model.PermissionUsuariosWrite), h.Usuario.CreateUsuario)
		usuarios.PUT("/:id", perm(model.PermissionUsuariosWrite), h.Usuario.UpdateUsuario)
		usuarios.DELETE("/:id", perm(model.PermissionUsuariosWrite), h.Usuario.DeactivateUsuario)
	}

	roles := api.Group("/roles")
	{
		roles.GET("", perm(model.PermissionRolesRead), h.Role.ListRoles)
		roles.GET("/permissions", perm(model.PermissionRolesRead), h.Role.ListPermissions)
		roles.GET("/:id", perm(model.PermissionRolesRead), h.Role.GetRole)
		roles.POST("", perm(model.PermissionRolesWrite), h.Role.CreateRole)
		roles.PUT("/:id", perm(model.PermissionRolesWrite), h.Role.UpdateRole)
		roles.DELETE("/:id", perm(model.PermissionRolesWrite), h.Role.DeleteRole)
	}

	api.GET("/admin/system/metrics", perm(model.PermissionUsuariosWrite), h.System.SystemMetricsSSE)
}

func registerCadastros(api *gin.RouterGroup, h *Handlers) {
	read := perm(model.PermissionCadastrosRead)
	write := perm(model.PermissionCadastrosWrite)

	api.GET("/campi", read, h.Cadastro.ListCampi)
	api.GET("/campi/:id", read, h.Cadastro.GetCampus)
	api.POST("/campi", write, h.Cadastro.CreateCampus)
	api.PUT("/campi/:id", write, h.Cadastro.UpdateCampus)
	api.DELETE("/campi/:id", write, h.Cadastro.DeactivateCampus)

	api.GET("/cursos", read, h.Cadastro.ListCursos)
	api.GET("/cursos/:id", read, h.Cadastro.GetCurso)
	api.POST("/cursos", write, h.Cadastro.CreateCurso)
	api.PUT("/cursos/:id", write, h.Cadastro.UpdateCurso)
	api.DELETE("/cursos/:id", write, h.Cadastro.DeactivateCurso)

	api.GET("/turmas", read, h.Cadastro.ListTurmas)
	api.GET("/turmas/:id", read, h.Cadastro.GetTurma)
	api.POST("/turmas", write, h.Cadastro.CreateTurma)
	api.PUT("/turmas/:id", write, h.Cadastro.UpdateTurma)
	api.DELETE("/turmas/:id", write, h.Cadastro.DeactivateTurma)
	api.GET("/turmas/:id/dashboard", perm(model.PermissionEstudantesRead), h.Estudante.DashboardTurma)
	api.GET("/turmas/:id/disciplinas", perm(model.PermissionPedagogicoRead), h.Pedagogico.ListDisciplinasTurma)

	api.GET("/servidores", read, h.Cadastro.ListServidores)
	api.GET("/servidores/filtrar", h.Cadastro.FiltrarServidores)
	api.GET("/servidores/:id", read, h.Cadastro.GetServidor)
	api.POST("/servidores", write, h.Cadastro.CreateServidor)
	api.PUT("/servidores/:id", write, h.Cadastro.UpdateServidor)
	api.DELETE("/servidores/:id", write, h.Cadastro.DeactivateServidor)

	api.GET("/infracoes", read, h.Cadastro.ListInfracoes)
	api.GET("/infracoes/:id", read, h.Cadastro.GetInfracao)
	api.POST("/infracoes", write, h.Cadastro.CreateInfracao)
	api.PUT("/infracoes/:id", write, h.Cadastro.UpdateInfracao)
	api.DELETE("/infracoes/:id", write, h.Cadastro.DeactivateInfracao)

	api.GET("/sancoes", read, h.Cadastro.ListSancoes)
	api.GET("/sancoes/:id", read, h.Cadastro.GetSancao)
	api.POST("/sancoes", write, h.Cadastro.CreateSancao)
	api.PUT("/sancoes/:id", write, h.Cadastro.UpdateSancao)
	api.DELETE("/sancoes/:id", write, h.Cadastro.DeleteSancao)

	api.GET("/tipos-rapidos", h.Cadastro.ListTiposRapidos)
	api.POST("/tipos-rapidos", perm(model.PermissionLimitesWrite), h.Cadastro.CreateTipoRapido)
	api.PUT("/tipos-rapidos/:id", perm(model.PermissionLimitesWrite), h.Cadastro.UpdateTipoRapido)
	api.DELETE("/tipos-rapidos/:id", perm(model.PermissionLimitesWrite), h.Cadastro.DeactivateTipoRapido)
}

func registerEstudantes(api *gin.RouterGroup, h *Handlers) {
	read := perm(model.PermissionEstudantesRead)
	write := perm(model.PermissionEstudantesWrite)

	est := api.Group("/estudantes")
	{
		est.GET("", read, h.Estudante.ListEstudantes)
		est.GET("/filtrar", read, h.Estudante.FiltrarEstudantes)
		est.GET("/:id", read, h.Estudante.GetEstudante)
		est.POST("", write, h.Estudante.CreateEstudante)
		est.PUT("/:id", write, h.Estudante.UpdateEstudante)
		est.DELETE("/:id", write, h.Estudante.DeactivateEstudante)
		est.POST("/:id/foto", write, h.Estudante.UploadFoto)
		est.GET("/:id/relatorio", read, h.Estudante.GetRelatorio)
		est.GET("/:id/ficha", h.Pedagogico.GetFicha)
		est.GET("/:id/responsaveis", read, h.Estudante.ResponsaveisDoEstudante)
		est.POST("/:id/responsaveis", write, h.Estudante.VincularResponsavel)
		est.DELETE("/:id/responsaveis/:responsavel_id", write, h.Estudante.DesvincularResponsavel)
	}

	resp := api.Group("/responsaveis")
	{
		resp.GET("", read, h.Estudante.ListResponsaveis)
		resp.GET("/:id", read, h.Estudante.GetResponsavel)
		resp.POST("", write, h.Estudante.CreateResponsavel)
		resp.PUT("/:id", write, h.Estudante.UpdateResponsavel)
		resp.DELETE("/:id", write, h.Estudante.DeleteResponsavel)
	}
}

func registerOcorrencias(api *gin.RouterGroup, h *Handlers) {
	read := perm(model.PermissionOcorrenciasRead)
	write := perm(model.PermissionOcorrenciasWrite)
	flow := perm(model.PermissionOcorrenciasFlow)

	oc := api.Group("/ocorrencias")
	{
		oc.GET("", read, h.Ocorrencia.ListOcorrencias)
		oc.GET("/:id", read, h.Ocorrencia.GetOcorrencia)
		oc.POST("", write, middleware.RequireServidor(), h.Ocorrencia.CreateOcorrencia)
		oc.PUT("/:id", write, h.Ocorrencia.UpdateOcorrencia)
		oc.GET("/:id/historico", read, h.Ocorrencia.GetHistorico)
		oc.POST("/:id/evidencias", write, perm(model.PermissionMediaUpload), h.Ocorrencia.UploadEvidencia)

		oc.POST("/:id/acoes/:acao", flow, h.Ocorrencia.Acao)
		oc.POST("/:id/comissao", flow, h.Ocorrencia.DesignarComissao)
		oc.POST("/:id/comissao/concluir", flow, h.Ocorrencia.ConcluirComissao)
		oc.POST("/:id/notificacoes", flow, h.Ocorrencia.NotificarEstudante)
		oc.POST("/:id/notificacoes/:notificacao_id/recebimento", flow, h.Ocorrencia.ConfirmarRecebimento)
		oc.POST("/:id/defesa", flow, h.Ocorrencia.RegistrarDefesa)
		oc.POST("/:id/sancao", flow, h.Ocorrencia.AplicarSancao)
		oc.POST("/:id/recursos", flow, h.Ocorrencia.AbrirRecurso)
		oc.POST("/:id/recursos/:recurso_id/decisao", flow, h.Ocorrencia.DecidirRecurso)

		oc.GET("/:id/documentos", read, h.Ocorrencia.ListDocumentos)
		oc.POST("/:id/documentos", flow, h.Ocorrencia.GerarDocumento)
	}
	api.GET("/documentos/:id/download", read, h.Ocorrencia.DownloadDocumento)
}

func registerRapidas(api *gin.RouterGroup, h *Handlers) {
	read := perm(model.PermissionOcorrenciasRead)
	write := perm(model.PermissionRapidasWrite)

	r := api.Group("/rapidas")
	{
		r.GET("", read, h.Rapida.ListRapidas)
		r.GET("/dashboard", read, h.Rapida.GetDashboard)
		r.GET("/:id", read, h.Rapida.GetRapida)
		r.POST("", write, middleware.RequireServidor(), h.Rapida.CreateRapida)
		r.PUT("/:id", write, h.Rapida.UpdateRapida)
		r.DELETE("/:id", write, h.Rapida.DeleteRapida)
		r.POST("/:id/recibo", write, h.Rapida.GerarRecibo)
	}

	l := api.Group("/limites")
	{
		l.GET("", perm(model.PermissionAlertasRead), h.Rapida.ListLimites)
		l.GET("/alertas", perm(model.PermissionAlertasRead), h.Rapida.ListAlertas)
		l.GET("/:id", perm(model.PermissionAlertasRead), h.Rapida.GetLimite)
		l.POST("", perm(model.PermissionLimitesWrite), h.Rapida.CreateLimite)
		l.PUT("/:id", perm(model.PermissionLimitesWrite), h.Rapida.UpdateLimite)
		l.DELETE("/:id", perm(model.PermissionLimitesWrite), h.Rapida.DeactivateLimite)
	}
}

// Notifications belong to the logged user, so no permission is needed.
func registerNotificacoes(api *gin.RouterGroup, h *Handlers) {
	n := api.Group("/notificacoes")
	{
		n.GET("", h.Notificacao.ListNotificacoes)
		n.GET("/recentes", h.Notificacao.Recentes)
		n.GET("/nao-lidas", h.Notificacao.ContarNaoLidas)
		n.POST("/lidas", h.Notificacao.MarcarTodasLidas)
		n.POST("/:id/lida", h.Notificacao.MarcarLida)
		n.GET("/preferencias", h.Notificacao.GetPreferencias)
		n.PUT("/preferencias", h.Notificacao.UpdatePreferencias)
	}
}

func registerAtendimentos(api *gin.RouterGroup, h *Handlers) {
	read := perm(model.PermissionAtendimentosRead)
	write := perm(model.PermissionAtendimentosWrite)

	a := api.Group("/atendimentos")
	{
		a.GET("/tipos", read, h.Atendimento.ListTipos)
		a.POST("/tipos", write, h.Atendimento.CreateTipo)
		a.PUT("/tipos/:id", write, h.Atendimento.UpdateTipo)
		a.GET("/situacoes", read, h.Atendimento.ListSituacoes)
		a.POST("/situacoes", write, h.Atendimento.CreateSituacao)
		a.PUT("/situacoes/:id", write, h.Atendimento.UpdateSituacao)

		a.GET("", read, h.Atendimento.ListAtendimentos)
		a.GET("/:id", read, h.Atendimento.GetAtendimento)
		a.POST("", write, middleware.RequireServidor(), h.Atendimento.CreateAtendimento)
		a.PUT("/:id", write, h.Atendimento.UpdateAtendimento)
		a.DELETE("/:id", write, h.Atendimento.DeleteAtendimento)
	}
}

func registerRefeitorio(api *gin.RouterGroup, h *Handlers) {
	read := perm(model.PermissionRefeitorioRead)
	write := perm(model.PermissionRefeitorioWrite)

	r := api.Group("/refeitorio")
	{
		r.GET("/dashboard", read, h.Refeitorio.GetDashboard)
		r.GET("/feed", read, h.Monitor.RefeitorioFeed)
		r.GET("/registros", read, h.Refeitorio.ListRegistros)
		r.GET("/relatorio", read, h.Refeitorio.GetRelatorio)
		r.GET("/relatorio.xlsx", read, h.Refeitorio.GetRelatorioXLSX)

		r.GET("/configs", read, h.Refeitorio.ListConfigs)
		r.POST("/configs", write, h.Refeitorio.CreateConfig)
		r.POST("/configs/padrao", write, h.Refeitorio.SeedConfigs)
		r.PUT("/configs/:id", write, h.Refeitorio.UpdateConfig)
		r.DELETE("/configs/:id", write, h.Refeitorio.DeleteConfig)

		r.GET("/bloqueios", read, h.Refeitorio.ListBloqueios)
		r.GET("/bloqueios/:id", read, h.Refeitorio.GetBloqueio)
		r.POST("/bloqueios", write, h.Refeitorio.CreateBloqueio)
		r.PUT("/bloqueios/:id", write, h.Refeitorio.UpdateBloqueio)
		r.DELETE("/bloqueios/:id", write, h.Refeitorio.DeactivateBloqueio)
	}
}

func registerPedagogico(api *gin.RouterGroup, h *Handlers) {
	read := perm(model.PermissionPedagogicoRead)
	write := perm(model.PermissionPedagogicoWrite)

	d := api.Group("/disciplinas")
	{
		d.GET("", read, h.Pedagogico.ListDisciplinas)
		d.GET("/:id", read, h.Pedagogico.GetDisciplina)
		d.POST("", write, h.Pedagogico.CreateDisciplina)
		d.PUT("/:id", write, h.Pedagogico.UpdateDisciplina)
		d.DELETE("/:id", write, h.Pedagogico.DeactivateDisciplina)
	}

	dt := api.Group("/disciplinas-turma")
	{
		dt.POST("", write, h.Pedagogico.CreateDisciplinaTurma)
		dt.PUT("/:id", write, h.Pedagogico.UpdateDisciplinaTurma)
		dt.DELETE("/:id", write, h.Pedagogico.DeleteDisciplinaTurma)
	}

	cc := api.Group("/conselhos")
	{
		cc.GET("", read, h.Pedagogico.ListConselhos)
		cc.GET("/informacoes/:id/disciplinas", read, h.Pedagogico.ListInformacoesDisciplina)
		cc.GET("/:id", read, h.Pedagogico.GetConselho)
		cc.POST("", write, h.Pedagogico.CreateConselho)
		cc.PUT("/:id", write, h.Pedagogico.UpdateConselho)
		cc.DELETE("/:id", write, h.Pedagogico.DeleteConselho)
		cc.PUT("/:id/estudantes", write, h.Pedagogico.SalvarInformacao)
	}
}

func registerNapne(api *gin.RouterGroup, h *Handlers) {
	read := perm(model.PermissionNapneRead)
	write := perm(model.PermissionNapneWrite)

	n := api.Group("/napne")
	{
		n.GET("/catalogos/:kind", read, h.Napne.ListCatalogo)
		n.POST("/catalogos/:kind", write, h.Napne.CreateCatalogo)
		n.PUT("/catalogos/:kind/:id", write, h.Napne.UpdateCatalogo)

		n.GET("/fichas", read, h.Napne.ListFichas)
		n.GET("/fichas/:id", read, h.Napne.GetFicha)
		n.POST("/fichas", write, h.Napne.CreateFicha)
		n.PUT("/fichas/:id", write, h.Napne.UpdateFicha)
		n.POST("/fichas/:id/laudo", write, h.Napne.AdicionarObservacaoLaudo)
		n.GET("/estudantes/:id/ficha", read, h.Napne.GetFichaByEstudante)

		n.GET("/atendimentos", read, h.Napne.ListAtendimentos)
		n.GET("/atendimentos/:id", read, h.Napne.GetAtendimento)
		n.POST("/atendimentos", write, middleware.RequireServidor(), h.Napne.CreateAtendimento)
		n.PUT("/atendimentos/:id", write, h.Napne.UpdateAtendimento)
		n.DELETE("/atendimentos/:id", write, h.Napne.DeleteAtendimento)
		n.POST("/atendimentos/:id/encaminhamentos", write, h.Napne.Encaminhar)
	}
}

// Project rules beyond projetos:read are checked by the service, which knows
// the coordinator and the participants.
func registerProjetos(api *gin.RouterGroup, h *Handlers) {
	read := perm(model.PermissionProjetosRead)
	manage := perm(model.PermissionProjetosManage)

	p := api.Group("/projetos", read)
	{
		p.GET("", h.Projeto.ListProjetos)
		p.POST("", h.Projeto.CreateProjeto)
		p.GET("/estatisticas", manage, h.Projeto.Estatisticas)
		p.GET("/alertas", h.Projeto.ListAlertas)
		p.POST("/alertas/:id/visualizado", h.Projeto.MarcarAlertaVisualizado)
		p.GET("/relatorios/horas", manage, h.Projeto.HorasPorServidor)
		p.GET("/relatorios/horas.xlsx", manage, h.Projeto.HorasPorServidorXLSX)
		p.GET("/relatorios/pendentes", manage, h.Projeto.RelatoriosPendentes)
		p.POST("/relatorios/verificar", manage, h.Projeto.VerificarRelatorios)

		p.GET("/:id", h.Projeto.GetProjeto)
		p.PUT("/:id", h.Projeto.UpdateProjeto)
		p.DELETE("/:id", h.Projeto.DeleteProjeto)
		p.POST("/:id/relatorio", h.Projeto.RegistrarRelatorio)
		p.GET("/:id/servidores", h.Projeto.ListServidores)
		p.POST("/:id/servidores", h.Projeto.AdicionarServidor)
		p.DELETE("/:id/servidores/:participacao_id", h.Projeto.RemoverServidor)
		p.GET("/:id/estudantes", h.Projeto.ListEstudantes)
		p.POST("/:id/estudantes", h.Projeto.AdicionarEstudante)
		p.DELETE("/:id/estudantes/:participacao_id", h.Projeto.RemoverEstudante)
	}
}
