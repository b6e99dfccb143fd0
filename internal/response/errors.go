package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrUserInactive       ErrCode = "USER_INACTIVE"
	ErrSessionRevoked     ErrCode = "SESSION_REVOKED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrServidorOnly     ErrCode = "SERVIDOR_ONLY"
	ErrComissaoOnly     ErrCode = "COMISSAO_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidDate    ErrCode = "INVALID_DATE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrActionForbidden  ErrCode = "ACTION_FORBIDDEN"
	ErrInvalidReference ErrCode = "INVALID_REFERENCE"
	ErrProtectedRole    ErrCode = "PROTECTED_ROLE"
	ErrSelfDeactivation ErrCode = "SELF_DEACTIVATION"

	// ─── Ocorrências ───────────────────────────────────────────────────
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrUnknownAction     ErrCode = "UNKNOWN_ACTION"
	ErrOcorrenciaClosed  ErrCode = "OCORRENCIA_CLOSED"
	ErrComissaoExists    ErrCode = "COMISSAO_EXISTS"
	ErrNoEstudantes      ErrCode = "NO_ESTUDANTES"
	ErrNoTipos           ErrCode = "NO_TIPOS"
	ErrStaleStatus       ErrCode = "STALE_STATUS"
	ErrPresidente        ErrCode = "PRESIDENTE_NOT_MEMBER"
	ErrRecursoDecidido   ErrCode = "RECURSO_DECIDED"

	// ─── Refeitório ────────────────────────────────────────────────────
	ErrCodigoRequired   ErrCode = "CODIGO_REQUIRED"
	ErrCodigoNotFound   ErrCode = "CODIGO_NOT_FOUND"
	ErrAccessBlocked    ErrCode = "ACCESS_BLOCKED"
	ErrOutsideMealHours ErrCode = "OUTSIDE_MEAL_HOURS"
	ErrMealAlreadyTaken ErrCode = "MEAL_ALREADY_TAKEN"

	// ─── Projetos ──────────────────────────────────────────────────────
	ErrHoursExceeded       ErrCode = "HOURS_EXCEEDED"
	ErrCoordinatorAsMember ErrCode = "COORDINATOR_AS_MEMBER"
	ErrInvalidPeriod       ErrCode = "INVALID_PERIOD"
	ErrNoReportSchedule    ErrCode = "NO_REPORT_SCHEDULE"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrUpstream        ErrCode = "UPSTREAM_ERROR"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Usuário ou senha inválidos."
	case ErrUserInactive:
		return "Usuário desativado. Procure a coordenação."
	case ErrSessionRevoked:
		return "Sua sessão foi encerrada. Faça login novamente."
	case ErrTokenRequired:
		return "Token de autenticação obrigatório."
	case ErrTokenInvalid:
		return "Token de autenticação inválido ou expirado."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Você não tem acesso a este recurso."
	case ErrPermissionDenied:
		return "Permissão negada."
	case ErrServidorOnly:
		return "Recurso restrito a servidores."
	case ErrComissaoOnly:
		return "Recurso restrito aos membros da Comissão Disciplinar."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Falha na validação. Verifique os campos informados."
	case ErrInvalidID:
		return "Identificador inválido."
	case ErrInvalidPayload:
		return "Corpo da requisição inválido."
	case ErrInvalidDate:
		return "Data inválida. Use o formato AAAA-MM-DD."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Registro não encontrado."
	case ErrConflict:
		return "Já existe um registro com estes dados."
	case ErrDependencyExists:
		return "O registro não pode ser excluído porque está em uso."
	case ErrActionForbidden:
		return "Esta ação não é permitida."
	case ErrInvalidReference:
		return "Um dos registros referenciados não existe."
	case ErrProtectedRole:
		return "O perfil de administrador não pode ser alterado."
	case ErrSelfDeactivation:
		return "Você não pode desativar o próprio usuário."

	// ─── Ocorrências ───────────────────────────────────────────────────
	case ErrInvalidTransition:
		return "A ocorrência não pode executar esta ação no status atual."
	case ErrUnknownAction:
		return "Ação desconhecida."
	case ErrOcorrenciaClosed:
		return "Ocorrência finalizada ou arquivada não pode ser alterada."
	case ErrComissaoExists:
		return "Esta ocorrência já possui comissão designada."
	case ErrNoEstudantes:
		return "Informe ao menos um estudante."
	case ErrNoTipos:
		return "Informe ao menos um tipo de ocorrência."
	case ErrStaleStatus:
		return "O status da ocorrência foi alterado por outro usuário. Recarregue e tente novamente."
	case ErrPresidente:
		return "O presidente deve ser membro da comissão."
	case ErrRecursoDecidido:
		return "Este recurso já foi decidido."

	// ─── Refeitório ────────────────────────────────────────────────────
	case ErrCodigoRequired:
		return "Código de barras não informado."
	case ErrCodigoNotFound:
		return "Código não encontrado no sistema."
	case ErrAccessBlocked:
		return "Acesso bloqueado."
	case ErrOutsideMealHours:
		return "Fora do horário de refeição."
	case ErrMealAlreadyTaken:
		return "Já realizou esta refeição."

	// ─── Projetos ──────────────────────────────────────────────────────
	case ErrHoursExceeded:
		return "A carga horária semanal do servidor no semestre ultrapassa 12 horas."
	case ErrCoordinatorAsMember:
		return "O coordenador não pode ser participante do próprio projeto."
	case ErrInvalidPeriod:
		return "A data final deve ser igual ou posterior à data inicial."
	case ErrNoReportSchedule:
		return "O projeto não possui periodicidade de relatório."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Envio de arquivo obrigatório."
	case ErrUnsupportedFile:
		return "Tipo de arquivo não suportado."
	case ErrFileTooLarge:
		return "O arquivo excede o tamanho máximo."
	case ErrUpstream:
		return "Falha ao consultar serviço externo."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Muitas requisições. Tente novamente em instantes."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Erro interno do servidor."
	default:
		return "Ocorreu um erro inesperado."
	}
}
