package pets

import (
	"strings"
	"time"
)

// Species define las categorías soportadas.
// @Enum dog, cat, bird, rabbit, other
type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesBird   Species = "bird"
	SpeciesRabbit Species = "rabbit"
	SpeciesOther  Species = "other"
)

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Pet representa el perfil de una mascota publicada en el marketplace.
// ID vacío => borrador todavía no persistido.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species Species
	Breed   string
	Sex     Sex

	Age      int     // años
	WeightKg float64 // kg

	Photos []string // URLs públicas, sin orden
	Notes  string

	// Version la incrementa el backend en cada escritura (empieza en 1).
	// El store la usa para descartar eventos viejos.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDraft indica si el pet aún no fue persistido.
func (p Pet) IsDraft() bool {
	return strings.TrimSpace(p.ID) == ""
}

// Clone copia el slice de fotos para que nadie comparta backing array.
func (p Pet) Clone() Pet {
	if p.Photos != nil {
		p.Photos = append([]string(nil), p.Photos...)
	}
	return p
}

// Draft son los atributos de un pet por crear (sin ID ni owner).
type Draft struct {
	Name     string
	Species  Species
	Breed    string
	Sex      Sex
	Age      int
	WeightKg float64
	Photos   []string
	Notes    string
}

// Patch es un update parcial: nil = no tocar.
// Photos reemplaza la lista completa.
type Patch struct {
	Name     *string
	Species  *Species
	Breed    *string
	Sex      *Sex
	Age      *int
	WeightKg *float64
	Photos   *[]string
	Notes    *string
}

func (pt Patch) IsEmpty() bool {
	return pt.Name == nil && pt.Species == nil && pt.Breed == nil && pt.Sex == nil &&
		pt.Age == nil && pt.WeightKg == nil && pt.Photos == nil && pt.Notes == nil
}

// Apply devuelve una copia de p con el patch aplicado (sin tocar Version/fechas).
func (pt Patch) Apply(p Pet) Pet {
	out := p.Clone()
	if pt.Name != nil {
		out.Name = strings.TrimSpace(*pt.Name)
	}
	if pt.Species != nil {
		out.Species = normalizeSpecies(*pt.Species)
	}
	if pt.Breed != nil {
		out.Breed = strings.TrimSpace(*pt.Breed)
	}
	if pt.Sex != nil {
		out.Sex = normalizeSex(*pt.Sex)
	}
	if pt.Age != nil {
		out.Age = *pt.Age
	}
	if pt.WeightKg != nil {
		out.WeightKg = *pt.WeightKg
	}
	if pt.Photos != nil {
		out.Photos = append([]string{}, (*pt.Photos)...)
	}
	if pt.Notes != nil {
		out.Notes = strings.TrimSpace(*pt.Notes)
	}
	return out
}

// Validate revisa atributos obligatorios de un pet (nuevo o parcheado).
func Validate(p Pet) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(string(p.Species)) == "" {
		return invalid("species is required")
	}
	if p.Age < 0 {
		return invalid("age must be >= 0")
	}
	if p.WeightKg < 0 {
		return invalid("weight_kg must be >= 0")
	}
	return nil
}

// FromDraft arma el Pet (todavía sin ID) normalizando strings.
func FromDraft(ownerUserID string, d Draft) Pet {
	return Pet{
		OwnerUserID: strings.TrimSpace(ownerUserID),
		Name:        strings.TrimSpace(d.Name),
		Species:     normalizeSpecies(d.Species),
		Breed:       strings.TrimSpace(d.Breed),
		Sex:         normalizeSex(d.Sex),
		Age:         d.Age,
		WeightKg:    d.WeightKg,
		Photos:      append([]string{}, d.Photos...),
		Notes:       strings.TrimSpace(d.Notes),
	}
}

func normalizeSpecies(s Species) Species {
	return Species(strings.ToLower(strings.TrimSpace(string(s))))
}

func normalizeSex(s Sex) Sex {
	v := Sex(strings.ToLower(strings.TrimSpace(string(s))))
	if v == "" {
		return SexUnknown
	}
	return v
}
