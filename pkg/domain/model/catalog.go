package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// monthLabels are the abbreviated month labels shown on dashboards, indexed by time.Month-1
var monthLabels = []string{
	"jan.", "fev.", "mar.", "abr.", "mai.", "jun.",
	"jul.", "ago.", "set.", "out.", "nov.", "dez.",
}

// MonthLabel returns the dashboard label of a month
func MonthLabel(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthLabels[m-1]
}

// MonthLabels returns all month labels in calendar order
func MonthLabels() []string {
	out := make([]string, len(monthLabels))
	copy(out, monthLabels)
	return out
}

// IsMonthLabel checks if s is one of the month labels
func IsMonthLabel(s string) bool {
	for _, m := range monthLabels {
		if m == s {
			return true
		}
	}
	return false
}

// SeedSector is a sector entry of the catalog file
type SeedSector struct {
	Name   string `yaml:"name"`
	Active *bool  `yaml:"active,omitempty"` // defaults to true
}

// SeedUser is a user entry of the catalog file
type SeedUser struct {
	Name    string   `yaml:"name"`
	Email   string   `yaml:"email"`
	Role    string   `yaml:"role"`
	Sectors []string `yaml:"sectors,omitempty"`
}

// SeedRole is a role entry of the catalog file
type SeedRole struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions,omitempty"`
}

// Catalog holds the incident-type catalog and the initial reference data
type Catalog struct {
	IncidentTypes []string     `yaml:"incident_types"`
	Sectors       []SeedSector `yaml:"sectors"`
	Roles         []SeedRole   `yaml:"roles"`
	Users         []SeedUser   `yaml:"users"`
}

// Validate validates the catalog
func (c *Catalog) Validate() error {
	if len(c.IncidentTypes) == 0 {
		return goerr.New("at least one incident type is required")
	}

	seen := make(map[string]bool)
	for i, t := range c.IncidentTypes {
		if t == "" {
			return goerr.New("empty incident type", goerr.V("index", i))
		}
		if seen[t] {
			return goerr.New("duplicate incident type", goerr.V("type", t))
		}
		seen[t] = true
	}

	sectors := make(map[string]bool)
	for i, s := range c.Sectors {
		if s.Name == "" {
			return goerr.New("sector name is required", goerr.V("index", i))
		}
		if sectors[s.Name] {
			return goerr.New("duplicate sector", goerr.V("name", s.Name))
		}
		sectors[s.Name] = true
	}

	roles := make(map[string]bool)
	for i, r := range c.Roles {
		if r.Name == "" {
			return goerr.New("role name is required", goerr.V("index", i))
		}
		if roles[r.Name] {
			return goerr.New("duplicate role", goerr.V("name", r.Name))
		}
		roles[r.Name] = true
	}

	for i, u := range c.Users {
		if u.Name == "" || u.Email == "" {
			return goerr.New("user name and email are required", goerr.V("index", i))
		}
		if !roles[u.Role] {
			return goerr.New("user refers to unknown role",
				goerr.V("user", u.Name),
				goerr.V("role", u.Role))
		}
		// Managers may be bound to sectors missing from the seed (e.g. "Qualidade"); names are not foreign keys.
	}

	return nil
}

// HasIncidentType checks if t is in the incident-type catalog
func (c *Catalog) HasIncidentType(t string) bool {
	for _, v := range c.IncidentTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Built-in role names
const (
	RoleQuality = "Qualidade"
	RoleManager = "Gestor"
	RoleAdmin   = "Administrador"
)

// DefaultCatalog returns the built-in catalog used when no catalog file is configured
func DefaultCatalog() *Catalog {
	types := make([]string, len(defaultIncidentTypes))
	copy(types, defaultIncidentTypes)

	return &Catalog{
		IncidentTypes: types,
		Sectors: []SeedSector{
			{Name: "Unidade 4° andar"},
			{Name: "OPME"},
			{Name: "Farmácia"},
			{Name: "UTI Adulto"},
			{Name: "Hotelaria"},
		},
		Roles: []SeedRole{
			{Name: RoleQuality, Permissions: []string{"all"}},
			{Name: RoleManager, Permissions: []string{"analysis"}},
			{Name: RoleAdmin, Permissions: []string{"admin"}},
		},
		Users: []SeedUser{
			{Name: "Ana Qualidade", Email: "ana@hospital.com", Role: RoleQuality, Sectors: []string{"Qualidade"}},
			{Name: "Carlos Gestor", Email: "carlos@hospital.com", Role: RoleManager, Sectors: []string{"Unidade 4° andar", "OPME", "Farmácia"}},
			{Name: "Admin Master", Email: "admin@hospital.com", Role: RoleAdmin},
		},
	}
}

var defaultIncidentTypes = []string{
	"Falha nas atividades administrativas",
	"Não procedente",
	"Falha durante a assistência à saúde",
	"Falha na documentação",
	"Quebra de contrato",
	"Quebra de protocolo",
	"Falha relacionado a material/ medicamento ou insumo",
	"Falhas envolvendo sondas",
	"Falha na comunicação",
	"Falha na administração de medicamentos",
	"Falha na administração de dietas",
	"Falha envolvendo equipamentos",
	"Falha na identificação do paciente",
	"Falhas envolvendo cateter venoso",
	"Falhas ocorridas em laboratórios clínicos",
	"Falhas na assistência radiológica",
	"Lesão por pressão",
	"Queda do paciente",
	"IRAS",
	"Flebite",
	"Lesão de pele",
	"Falha em reconhecer sinais e sintomas de deterioração",
	"Acidente de trabalho",
	"Reação transfusional",
	"Falha na infraestrutura",
	"Parada cardiorrespiratória",
	"Incidentes envolvendo intubação traqueal",
	"Falhas no cuidado e proteção do paciente",
	"Falhas na administração de O2 ou gases medicinais",
	"Falhas envolvendo drenos",
	"Pneumotórax",
	"Falha por pressão relacionado ao uso de dispositivo",
	"Falhas envolvendo tubo endotraqueal",
	"Extravasamento",
	"Broncoaspiração",
	"Queimaduras",
	"Extubação endotraqueal acidental",
	"Dermatite",
	"Readmissão em até 30 dias de alta",
	"Reação medicamentosa",
	"Lesão de pele por fricção",
}

// IshikawaCauses lists the suggested causes per 6M category offered to managers
var IshikawaCauses = map[IshikawaCategory][]string{
	IshikawaWorkforce: {
		"Déficit de dimensionamento de enfermagem",
		"Sobrecarga de trabalho",
		"Fadiga / jornada excessiva",
		"Falta de treinamento específico",
		"Falta de capacitação técnica",
		"Comunicação ineficaz entre equipe",
		"Falha na passagem de plantão",
		"Não adesão a protocolos",
		"Desconhecimento de fluxos institucionais",
		"Alta rotatividade de profissionais",
		"Falta de supervisão",
		"Liderança ausente",
		"Desmotivação da equipe",
		"Profissional recém-contratado sem integração adequada",
	},
	IshikawaMachines: {
		"Equipamento com defeito",
		"Manutenção preventiva vencida",
		"Falta de calibração",
		"Falha elétrica",
		"Equipamento inadequado para o procedimento",
		"Alarme não configurado corretamente",
		"Falta de treinamento no uso do equipamento",
		"Tecnologia obsoleta",
		"Falha de software",
		"Falta de backup de equipamento",
	},
	IshikawaMaterials: {
		"Falta de insumos",
		"Material vencido",
		"Armazenamento inadequado",
		"Identificação incorreta",
		"Medicamento com embalagem semelhante",
		"Erro na dispensação",
		"Lote com problema",
		"Material de baixa qualidade",
		"Falta de rastreabilidade",
		"Erro na separação do material",
	},
	IshikawaMethods: {
		"Protocolo inexistente",
		"Protocolo desatualizado",
		"Fluxo mal definido",
		"Ausência de checklist",
		"Falta de dupla checagem",
		"Processo não padronizado",
		"Falha na validação de prescrição",
		"Falta de barreiras de segurança",
		"Mudança recente de processo sem treinamento",
		"Ausência de auditoria interna",
	},
	IshikawaEnvironment: {
		"Ambiente superlotado",
		"Ruído excessivo",
		"Iluminação inadequada",
		"Espaço físico reduzido",
		"Interrupções frequentes",
		"Pressão assistencial elevada",
		"Clima organizacional negativo",
		"Temperatura inadequada",
		"Layout inadequado da unidade",
		"Circulação excessiva de pessoas",
	},
	IshikawaMeasurement: {
		"Indicadores não monitorados",
		"Dados inconsistentes",
		"Subnotificação de eventos",
		"Falta de cultura de segurança",
		"Ausência de análise crítica periódica",
		"Indicadores não divulgados à equipe",
		"Falta de auditoria",
		"Metas mal definidas",
		"Ausência de feedback estruturado",
		"Falta de plano de ação após análise",
	},
}
