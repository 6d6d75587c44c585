package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	seedParishes = []string{
		"Kingston", "St. Andrew", "St. Catherine", "Portland",
		"St. James", "Manchester", "Clarendon", "Westmoreland",
	}
	seedCuisines = []string{"Italian", "Jamaican", "Chinese", "Indian", "Mexican"}
	seedColours  = []string{"Blue", "Red", "Green", "Yellow", "Purple"}
	seedSubjects = []string{"Math", "History", "Biology", "Art", "Geography"}
	seedRaces    = []string{"Black", "White", "Asian", "Mixed"}
)

// SeedTestData resets the database and populates it with demo users,
// profiles and favourite edges.
//
// Behavior:
//  1. Clears existing rows in `favourites`, `profiles` and `users`.
//  2. Creates 20 users (10 male, 10 female) with hashed passwords.
//  3. Gives each user 1-3 profiles with randomized attributes.
//  4. Generates ~100 favourite edges, skipping self-edges; duplicates are
//     absorbed by ON CONFLICT DO NOTHING.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"favourites", "profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE profiles AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'profiles'")
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	// --- Seed Users (10 male, 10 female) ---
	var userIDs []uint64
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := User{
			Username:     fmt.Sprintf("user%d", i),
			Name:         fmt.Sprintf("Demo User %d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Photo:        fmt.Sprintf("user%d.jpg", i),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		userIDs = append(userIDs, user.ID)

		sex := "Male"
		if i > 10 {
			sex = "Female"
		}

		// 1-3 profiles per user
		profileCount := 1 + r.Intn(MaxProfilesPerUser)
		for p := 0; p < profileCount; p++ {
			birthYear := 1975 + r.Intn(30)
			height := 1.50 + r.Float64()*0.50

			profile := Profile{
				UserID:           user.ID,
				Description:      fmt.Sprintf("Profile %d of %s", p+1, user.Username),
				Parish:           seedParishes[r.Intn(len(seedParishes))],
				Biography:        "Looking for someone to share long walks and good food with.",
				Sex:              sex,
				Race:             seedRaces[r.Intn(len(seedRaces))],
				BirthYear:        &birthYear,
				Height:           &height,
				FavCuisine:       seedCuisines[r.Intn(len(seedCuisines))],
				FavColour:        seedColours[r.Intn(len(seedColours))],
				FavSchoolSubject: seedSubjects[r.Intn(len(seedSubjects))],
				Political:        r.Intn(2) == 0,
				Religious:        r.Intn(2) == 0,
				FamilyOriented:   r.Intn(2) == 0,
			}
			if err := db.Create(&profile).Error; err != nil {
				return fmt.Errorf("failed to seed profile: %w", err)
			}
		}
	}
	log.Println("Seeded 20 users with profiles.")

	// --- Seed Favourites (~100 edges) ---
	for i := 0; i < 100; i++ {
		truster := userIDs[r.Intn(len(userIDs))]
		target := userIDs[r.Intn(len(userIDs))]
		if truster == target {
			continue
		}

		fav := Favourite{UserID: truster, FavUserID: target}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
			return fmt.Errorf("failed to seed favourite: %w", err)
		}
	}
	log.Println("Seeded favourite edges.")

	return nil
}
