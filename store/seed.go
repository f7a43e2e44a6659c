package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cafsi-mindset/portal/model"
)

var defaultSettings = model.AppSettings{AppName: "CAFSI MINDSET"}

type seedUser struct {
	id, secret, name string
	role             model.Role
}

var seedUsers = []seedUser{
	{"admin", "admin123", "Admin Principal", model.RoleAdmin},
	{"asi001", "1234", "Jean Dupont", model.RoleTrainee},
	{"asi002", "5678", "Marie Curie", model.RoleTrainee},
}

const courseIntroContent = `# Introduction à la Sécurité Incendie

## Le Triangle du Feu

Pour qu'un incendie se déclare, trois éléments doivent être réunis :
1. **Combustible** : matière inflammable (bois, papier, essence...)
2. **Comburant** : généralement l'oxygène de l'air
3. **Énergie d'activation** : source de chaleur (flamme, étincelle...)

## Classes de Feu

- **Classe A** : Feux de matériaux solides (bois, papier, tissus)
- **Classe B** : Feux de liquides ou solides liquéfiables (essence, alcool)
- **Classe C** : Feux de gaz (butane, propane)
- **Classe D** : Feux de métaux (magnésium, sodium)
- **Classe F** : Feux d'huiles et graisses de cuisson

## Évacuation

En cas d'incendie :
1. Déclencher l'alarme
2. Appeler les secours (18 ou 112)
3. Évacuer calmement
4. Ne jamais utiliser les ascenseurs`

const courseExtinguisherContent = `# Utilisation des Extincteurs

## Méthode PASS

**P** - Pull (Retirer la goupille)
**A** - Aim (Viser la base des flammes)
**S** - Squeeze (Presser la poignée)
**S** - Sweep (Balayer de gauche à droite)

## Règles de Sécurité

1. **Distance** : Se tenir à 2-3 mètres du foyer
2. **Position** : Dos au vent pour éviter fumées et flammes
3. **Mouvement** : Balayer en zigzag à la base des flammes
4. **Vigilance** : Surveiller toute reprise du feu

## Vérifications Périodiques

- Contrôle visuel mensuel
- Vérification annuelle obligatoire`

func seedCourses(now time.Time) []model.Course {
	return []model.Course{
		{
			ID:          "1",
			Title:       "Introduction à la Sécurité Incendie",
			Description: "Les bases essentielles de la prévention et lutte contre l'incendie",
			Content:     courseIntroContent,
			Kind:        model.ContentText,
			CreatedAt:   now,
		},
		{
			ID:          "2",
			Title:       "Utilisation des Extincteurs",
			Description: "Techniques et procédures d'utilisation des différents types d'extincteurs",
			Content:     courseExtinguisherContent,
			Kind:        model.ContentText,
			CreatedAt:   now,
		},
	}
}

func seedQuizzes(now time.Time) []model.Quiz {
	return []model.Quiz{
		{
			ID:          "1",
			Title:       "QCM - Les Bases de la Sécurité Incendie",
			Description: "Testez vos connaissances sur les fondamentaux",
			Duration:    10,
			CreatedAt:   now,
			Questions: []model.QuizQuestion{
				{
					ID:       "1",
					Question: "Quels sont les trois éléments du triangle du feu ?",
					Options: []string{
						"Combustible, Comburant, Énergie",
						"Feu, Fumée, Chaleur",
						"Oxygène, Azote, Hydrogène",
						"Eau, Air, Terre",
					},
					CorrectAnswer: 0,
				},
				{
					ID:            "2",
					Question:      "Quelle classe de feu concerne les liquides inflammables ?",
					Options:       []string{"Classe A", "Classe B", "Classe C", "Classe D"},
					CorrectAnswer: 1,
				},
				{
					ID:            "3",
					Question:      "Quel numéro composer pour appeler les pompiers en France ?",
					Options:       []string{"17", "15", "18", "112"},
					CorrectAnswer: 2,
				},
				{
					ID:            "4",
					Question:      "Que signifie le \"P\" dans la méthode PASS ?",
					Options:       []string{"Presser", "Protéger", "Pull (Retirer)", "Pointer"},
					CorrectAnswer: 2,
				},
				{
					ID:            "5",
					Question:      "À quelle distance doit-on se tenir pour utiliser un extincteur ?",
					Options:       []string{"1 mètre", "2-3 mètres", "5 mètres", "10 mètres"},
					CorrectAnswer: 1,
				},
			},
		},
	}
}

// Init seeds each collection once, only when its key is absent. Re-running
// against an initialized medium is a no-op.
func (s *Store) Init(ctx context.Context) error {
	now := time.Now()
	seeded := false

	if _, ok, err := s.get(ctx, keyUsers); err != nil {
		return err
	} else if !ok {
		users := make([]model.User, 0, len(seedUsers))
		for _, su := range seedUsers {
			hash, err := bcrypt.GenerateFromPassword([]byte(su.secret), 12)
			if err != nil {
				return fmt.Errorf("hash seed secret for %s: %w", su.id, err)
			}
			users = append(users, model.User{ID: su.id, Secret: string(hash), Name: su.name, Role: su.role})
		}
		if err := s.SaveUsers(ctx, users); err != nil {
			return err
		}
		seeded = true
	}

	if _, ok, err := s.get(ctx, keyCourses); err != nil {
		return err
	} else if !ok {
		if err := s.SaveCourses(ctx, seedCourses(now)); err != nil {
			return err
		}
		seeded = true
	}

	if _, ok, err := s.get(ctx, keyQuizzes); err != nil {
		return err
	} else if !ok {
		if err := s.SaveQuizzes(ctx, seedQuizzes(now)); err != nil {
			return err
		}
		seeded = true
	}

	if _, ok, err := s.get(ctx, keyResults); err != nil {
		return err
	} else if !ok {
		if err := saveAll(ctx, s, keyResults, []model.QuizResult{}); err != nil {
			return err
		}
		seeded = true
	}

	if _, ok, err := s.get(ctx, keySettings); err != nil {
		return err
	} else if !ok {
		if err := s.SaveSettings(ctx, defaultSettings); err != nil {
			return err
		}
		seeded = true
	}

	if seeded {
		log.Printf("store: seeded initial data")
	}
	return nil
}
