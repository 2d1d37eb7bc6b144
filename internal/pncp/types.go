// Package pncp implements the client side of the PNCP public consultation
// API: record types, a retrying HTTP fetcher, the pagination loop, and the
// selectable gathering sources.
package pncp

import "strings"

// PortalBaseURL is the public portal prefix used to build detail links.
const PortalBaseURL = "https://pncp.gov.br/contratacoes/"

// Record is a single procurement notice as returned by the consultation API.
// Records are immutable once decoded; nothing downstream mutates them.
type Record struct {
	ControlNumber    string  `json:"numeroControle"`
	OrganizationName string  `json:"razaoSocialOrgao"`
	OrganizationCNPJ string  `json:"cnpjOrgao"`
	Description      string  `json:"objeto"`
	EstimatedValue   float64 `json:"valorTotal"`
	PublicationDate  string  `json:"dataPublicacao"`
	OpeningDate      string  `json:"dataAbertura"`
	ModalityCode     int     `json:"modalidade"`
}

// DetailURL builds the public portal link for the record. Only the slash
// characters of the control number are percent-encoded; the portal rejects
// fully escaped identifiers.
func (r Record) DetailURL() string {
	return PortalBaseURL + strings.ReplaceAll(r.ControlNumber, "/", "%2F")
}

// Page is the envelope returned by every paginated consultation endpoint.
type Page struct {
	Records    []Record `json:"data"`
	TotalPages int      `json:"totalPaginas"`
}

// APIError is the structured error body the API returns on 4xx responses.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Path    string `json:"path"`
}

// ModalityUnknown is the display name for modality codes outside the table.
const ModalityUnknown = "Desconhecida"

var modalityNames = map[int]string{
	1:  "Leilão - Eletrônico",
	2:  "Diálogo Competitivo",
	3:  "Concurso",
	4:  "Concorrência - Eletrônica",
	5:  "Concorrência - Presencial",
	6:  "Pregão - Eletrônico",
	7:  "Pregão - Presencial",
	8:  "Dispensa de Licitação",
	9:  "Inexigibilidade",
	10: "Manifestação de Interesse",
	11: "Pré-qualificação",
	12: "Credenciamento",
	13: "Leilão - Presencial",
}

// ModalityName maps a contracting modality code to its display name.
func ModalityName(code int) string {
	if name, ok := modalityNames[code]; ok {
		return name
	}
	return ModalityUnknown
}
