package pets

import "time"

// Row es la forma JSON de un pet. La comparten handlers, el gateway REST
// y los registros del feed realtime.
type Row struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Species     Species   `json:"species"`
	Breed       string    `json:"breed"`
	Sex         Sex       `json:"sex"`
	Age         int       `json:"age"`
	WeightKg    float64   `json:"weight_kg"`
	Photos      []string  `json:"photos"`
	Notes       string    `json:"notes"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToRow(p Pet) Row {
	photos := p.Photos
	if photos == nil {
		photos = []string{}
	}
	return Row{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Sex:         p.Sex,
		Age:         p.Age,
		WeightKg:    p.WeightKg,
		Photos:      append([]string{}, photos...),
		Notes:       p.Notes,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r Row) Pet() Pet {
	return Pet{
		ID:          r.ID,
		OwnerUserID: r.OwnerUserID,
		Name:        r.Name,
		Species:     r.Species,
		Breed:       r.Breed,
		Sex:         r.Sex,
		Age:         r.Age,
		WeightKg:    r.WeightKg,
		Photos:      append([]string{}, r.Photos...),
		Notes:       r.Notes,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// DraftRow es el body de POST /pets.
type DraftRow struct {
	Name     string   `json:"name"`
	Species  Species  `json:"species"`
	Breed    string   `json:"breed"`
	Sex      Sex      `json:"sex"`
	Age      int      `json:"age"`
	WeightKg float64  `json:"weight_kg"`
	Photos   []string `json:"photos"`
	Notes    string   `json:"notes"`
}

func ToDraftRow(d Draft) DraftRow {
	return DraftRow{
		Name:     d.Name,
		Species:  d.Species,
		Breed:    d.Breed,
		Sex:      d.Sex,
		Age:      d.Age,
		WeightKg: d.WeightKg,
		Photos:   d.Photos,
		Notes:    d.Notes,
	}
}

func (r DraftRow) Draft() Draft {
	return Draft{
		Name:     r.Name,
		Species:  r.Species,
		Breed:    r.Breed,
		Sex:      r.Sex,
		Age:      r.Age,
		WeightKg: r.WeightKg,
		Photos:   r.Photos,
		Notes:    r.Notes,
	}
}

// PatchRow es el body de PATCH /pets/{petID}.
// Punteros para PATCH real: campo ausente = no tocar.
type PatchRow struct {
	Name     *string   `json:"name,omitempty"`
	Species  *Species  `json:"species,omitempty"`
	Breed    *string   `json:"breed,omitempty"`
	Sex      *Sex      `json:"sex,omitempty"`
	Age      *int      `json:"age,omitempty"`
	WeightKg *float64  `json:"weight_kg,omitempty"`
	Photos   *[]string `json:"photos,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}

func ToPatchRow(p Patch) PatchRow {
	return PatchRow(p)
}

func (r PatchRow) Patch() Patch {
	return Patch(r)
}
