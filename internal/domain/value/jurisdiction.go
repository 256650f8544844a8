package value

import (
	"fmt"
	"strings"

	"propinvest/internal/domain"
	"propinvest/pkg/errcodes"
)

// Jurisdiction штат или территория, для которых публикуется таблица пошлины.
type Jurisdiction string

const (
	JurisdictionNSW Jurisdiction = "NSW"
	JurisdictionVIC Jurisdiction = "VIC"
	JurisdictionQLD Jurisdiction = "QLD"
	JurisdictionSA  Jurisdiction = "SA"
	JurisdictionWA  Jurisdiction = "WA"
	JurisdictionTAS Jurisdiction = "TAS"
	JurisdictionNT  Jurisdiction = "NT"
	JurisdictionACT Jurisdiction = "ACT"
)

func ParseJurisdiction(s string) (Jurisdiction, error) {
	j := Jurisdiction(strings.ToUpper(strings.TrimSpace(s)))

	switch j {
	case JurisdictionNSW, JurisdictionVIC, JurisdictionQLD, JurisdictionSA,
		JurisdictionWA, JurisdictionTAS, JurisdictionNT, JurisdictionACT:
		return j, nil
	default:
		return "", domain.NewError(errcodes.InvalidJurisdiction, fmt.Sprintf("unknown jurisdiction %q", s))
	}
}

func (j Jurisdiction) String() string {
	return string(j)
}

// Occupancy тип владения: для себя (OO) или инвестиционный (INV).
type Occupancy string

const (
	OccupancyOwnerOccupier Occupancy = "OO"
	OccupancyInvestor      Occupancy = "INV"
)

func ParseOccupancy(s string) (Occupancy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OO", "OWNER_OCCUPIER", "OWNER-OCCUPIER":
		return OccupancyOwnerOccupier, nil
	case "INV", "INVESTOR":
		return OccupancyInvestor, nil
	default:
		return "", domain.NewError(errcodes.InvalidOccupancy, fmt.Sprintf("unknown occupancy %q", s))
	}
}

func (o Occupancy) String() string {
	return string(o)
}
