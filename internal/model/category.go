package model

// Category groups transactions, e.g. "Transport". Categories are per user.
type Category struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"size:50;not null"`
	Description *string `json:"description" gorm:"size:255"`
	Color       string  `json:"color" gorm:"type:char(7);not null"`
	UserID      uint    `json:"userId" gorm:"not null;index"`

	// Relations
	Transactions []Transaction `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
}

// CategoryChanges lists the fields an update may touch. ClearDescription
// sets the description to NULL.
type CategoryChanges struct {
	Name             *string
	Description      *string
	ClearDescription bool
	Color            *string
}

// DefaultCategory is one entry of the starter catalogue given to new users.
type DefaultCategory struct {
	Name        string
	Description string
	Color       string
}

// DefaultCategories is the starter catalogue created at registration.
var DefaultCategories = []DefaultCategory{
	{Name: "Alimentation", Description: "Courses, restaurants, livraisons de repas", Color: "#FF6B6B"},
	{Name: "Transport", Description: "Essence, transports en commun, taxi, vélo", Color: "#4ECDC4"},
	{Name: "Logement", Description: "Loyer, charges, électricité, eau, internet", Color: "#45B7D1"},
	{Name: "Loisirs", Description: "Cinéma, concerts, sorties, hobbies", Color: "#FFA07A"},
	{Name: "Vêtements", Description: "Habits, chaussures, accessoires", Color: "#98D8C8"},
	{Name: "Santé", Description: "Médecin, pharmacie, sport, bien-être", Color: "#F7DC6F"},
	{Name: "Éducation", Description: "Livres, formations, cours, abonnements éducatifs", Color: "#BB8FCE"},
	{Name: "Shopping", Description: "Achats divers, électronique, décoration", Color: "#F8B739"},
	{Name: "Abonnements", Description: "Netflix, Spotify, services en ligne", Color: "#5DADE2"},
	{Name: "Cadeaux", Description: "Anniversaires, fêtes, cadeaux divers", Color: "#EC7063"},
	{Name: "Épargne", Description: "Économies, investissements, placements", Color: "#52BE80"},
	{Name: "Autre", Description: "Dépenses non catégorisées", Color: "#95A5A6"},
}

// DefaultCategoriesFor builds fresh category rows from the starter catalogue.
func DefaultCategoriesFor(userID uint) []Category {
	out := make([]Category, 0, len(DefaultCategories))
	for _, d := range DefaultCategories {
		desc := d.Description
		out = append(out, Category{
			Name:        d.Name,
			Description: &desc,
			Color:       d.Color,
			UserID:      userID,
		})
	}
	return out
}
