package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/calendar"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
)

// describe renders the notable fields of a location group.
func describe(details types.LocationDetails) []string {
	var parts []string
	add := func(label, v string) {
		if v != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", label, v))
		}
	}
	addDate := func(label string, t *time.Time) {
		if t != nil && !t.IsZero() {
			parts = append(parts, fmt.Sprintf("%s: %s", label, calendar.FormatBR(*t)))
		}
	}

	switch d := details.(type) {
	case types.DepositDetails:
		add("Descrição", d.Description)
		add("Colaborador", d.Collaborator)
	case types.RentalDetails:
		add("Empresa", d.Company)
		add("Obra", d.WorkSite)
		addDate("Início", &d.StartDate)
		addDate("Término", d.EndDate)
		add("Contrato", d.ContractNumber)
	case types.MaintenanceDetails:
		add("Empresa", d.Company)
		add("Obra", d.WorkSite)
		addDate("Chegada", &d.ArrivalDate)
		addDate("Saída", d.DepartureDate)
		add("Serviço", d.Description)
		add("Obs. atraso", d.DelayObservations)
	case types.InspectionDetails:
		addDate("Início do laudo", &d.StartDate)
	}
	return parts
}

func narrative(head string, parts ...string) string {
	all := append([]string{head}, parts...)
	return strings.Join(all, " | ")
}

func moveNarrative(from, to types.LocationDetails, justification string) string {
	parts := describe(to)
	if j := strings.TrimSpace(justification); j != "" {
		parts = append(parts, "Justificativa: "+j)
	}
	return narrative(fmt.Sprintf("Movimentação: %s → %s", labelOf(from), to.LocationType().Label()), parts...)
}

func inspectionNarrative(from types.LocationDetails) string {
	return narrative(fmt.Sprintf("Enviado para laudo: %s → %s", labelOf(from), types.LocationInspection.Label()))
}

func decisionNarrative(decision Decision, to types.LocationDetails, archived int, justification string) string {
	parts := describe(to)
	if archived > 0 {
		parts = append(parts, fmt.Sprintf("Ciclos arquivados: %d", archived))
	}
	if j := strings.TrimSpace(justification); j != "" {
		parts = append(parts, "Justificativa: "+j)
	}
	return narrative(fmt.Sprintf("Decisão pós-laudo: %s → %s", decision.Label(), to.LocationType().Label()), parts...)
}

func substitutedNarrative(newCode, reason, notes string) string {
	parts := []string{"Motivo: " + reason}
	if n := strings.TrimSpace(notes); n != "" {
		parts = append(parts, "Observações: "+n)
	}
	return narrative(fmt.Sprintf("Substituído pelo PAT %s → %s", newCode, types.LocationInspection.Label()), parts...)
}

func replacementNarrative(oldCode string, inherited types.LocationDetails, reason, notes string) string {
	parts := append(describe(inherited), "Motivo: "+reason)
	if n := strings.TrimSpace(notes); n != "" {
		parts = append(parts, "Observações: "+n)
	}
	return narrative(fmt.Sprintf("Substitui o PAT %s → %s", oldCode, inherited.LocationType().Label()), parts...)
}

func labelOf(details types.LocationDetails) string {
	if details == nil {
		return "-"
	}
	return details.LocationType().Label()
}
