package model

import "sort"

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionMediaUpload allows uploading evidence and attachments.
	PermissionMediaUpload Permission = "media:upload"

	// PermissionCadastrosRead allows viewing the registry (campi, cursos, turmas, servidores, catalogs).
	PermissionCadastrosRead Permission = "cadastros:read"

	// PermissionCadastrosWrite allows maintaining the registry.
	PermissionCadastrosWrite Permission = "cadastros:write"

	// PermissionEstudantesRead allows viewing students and their reports.
	PermissionEstudantesRead Permission = "estudantes:read"

	// PermissionEstudantesWrite allows creating and updating students and guardians.
	PermissionEstudantesWrite Permission = "estudantes:write"

	// PermissionOcorrenciasRead allows viewing disciplinary occurrences.
	PermissionOcorrenciasRead Permission = "ocorrencias:read"

	// PermissionOcorrenciasWrite allows registering disciplinary occurrences.
	PermissionOcorrenciasWrite Permission = "ocorrencias:write"

	// PermissionOcorrenciasFlow allows moving occurrences through the disciplinary process.
	PermissionOcorrenciasFlow Permission = "ocorrencias:flow"

	// PermissionRapidasWrite allows registering quick occurrences.
	PermissionRapidasWrite Permission = "ocorrencias_rapidas:write"

	// PermissionAlertasRead allows viewing monthly threshold alerts.
	PermissionAlertasRead Permission = "alertas:read"

	// PermissionLimitesWrite allows configuring monthly thresholds.
	PermissionLimitesWrite Permission = "limites:write"

	// PermissionAtendimentosRead allows viewing attendance records.
	PermissionAtendimentosRead Permission = "atendimentos:read"

	// PermissionAtendimentosWrite allows registering attendance records.
	PermissionAtendimentosWrite Permission = "atendimentos:write"

	// PermissionRefeitorioRead allows viewing cafeteria dashboards and reports.
	PermissionRefeitorioRead Permission = "refeitorio:read"

	// PermissionRefeitorioWrite allows operating the kiosk and managing blocks and meal windows.
	PermissionRefeitorioWrite Permission = "refeitorio:write"

	// PermissionPedagogicoRead allows viewing disciplines and class councils.
	PermissionPedagogicoRead Permission = "pedagogico:read"

	// PermissionPedagogicoWrite allows maintaining disciplines and class councils.
	PermissionPedagogicoWrite Permission = "pedagogico:write"

	// PermissionNapneRead allows viewing NAPNE records.
	PermissionNapneRead Permission = "napne:read"

	// PermissionNapneWrite allows maintaining NAPNE records.
	PermissionNapneWrite Permission = "napne:write"

	// PermissionProjetosRead allows viewing research and extension projects.
	PermissionProjetosRead Permission = "projetos:read"

	// PermissionProjetosWrite allows registering projects.
	PermissionProjetosWrite Permission = "projetos:write"

	// PermissionProjetosManage allows editing any project and viewing management reports.
	PermissionProjetosManage Permission = "projetos:manage"

	// PermissionFichaRead allows viewing the consolidated student record.
	PermissionFichaRead Permission = "ficha:read"

	// PermissionUsuariosRead allows viewing login accounts.
	PermissionUsuariosRead Permission = "usuarios:read"

	// PermissionUsuariosWrite allows creating, updating, and deactivating login accounts.
	PermissionUsuariosWrite Permission = "usuarios:write"

	// PermissionRolesRead allows viewing roles and permissions.
	PermissionRolesRead Permission = "roles:read"

	// PermissionRolesWrite allows creating, updating, and deleting roles.
	PermissionRolesWrite Permission = "roles:write"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionMediaUpload,
	PermissionCadastrosRead,
	PermissionCadastrosWrite,
	PermissionEstudantesRead,
	PermissionEstudantesWrite,
	PermissionOcorrenciasRead,
	PermissionOcorrenciasWrite,
	PermissionOcorrenciasFlow,
	PermissionRapidasWrite,
	PermissionAlertasRead,
	PermissionLimitesWrite,
	PermissionAtendimentosRead,
	PermissionAtendimentosWrite,
	PermissionRefeitorioRead,
	PermissionRefeitorioWrite,
	PermissionPedagogicoRead,
	PermissionPedagogicoWrite,
	PermissionNapneRead,
	PermissionNapneWrite,
	PermissionProjetosRead,
	PermissionProjetosWrite,
	PermissionProjetosManage,
	PermissionFichaRead,
	PermissionUsuariosRead,
	PermissionUsuariosWrite,
	PermissionRolesRead,
	PermissionRolesWrite,
}

// EffectivePermissions merges the role grants with the ones implied by the
// account and its staff profile. The result is sorted and free of duplicates.
func EffectivePermissions(rolePerms []string, u *Usuario, s *Servidor) []string {
	set := make(map[string]struct{}, len(rolePerms)+4)
	for _, p := range rolePerms {
		set[p] = struct{}{}
	}

	if u != nil && u.IsSuperuser {
		for _, p := range AllPermissions {
			set[string(p)] = struct{}{}
		}
	}

	if s != nil {
		if s.MembroComissaoDisciplinar {
			set[string(PermissionOcorrenciasFlow)] = struct{}{}
		}
		if s.PodeRegistrarAtendimento {
			set[string(PermissionAtendimentosWrite)] = struct{}{}
		}
		if s.PodeVisualizarFichaAluno {
			set[string(PermissionFichaRead)] = struct{}{}
		}
		switch s.Coordenacao {
		case CoordenacaoNAPNE:
			set[string(PermissionNapneWrite)] = struct{}{}
		case CoordenacaoCGEN, CoordenacaoDG:
			set[string(PermissionProjetosManage)] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
