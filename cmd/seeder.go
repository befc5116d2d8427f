package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type seedPermission struct {
	Controller string
	Action     string
	Name       string
	Title      string
	Group      string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the admin account and permission catalog",
	Long:  `Seed the database with the bootstrap admin user, the permission catalog and the navigation links.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"user_permissions", "user_roles", "user_teams", "role_permissions", "notifications"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared assignment tables")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)

		adminEmail := "admin@example.com"
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&exists); err != nil {
			if err := db.Exec(
				"INSERT INTO users (user_name, email, full_name, password_hash, is_admin, account_type, status, created_at, updated_at) VALUES (?, ?, ?, ?, true, 1, 1, now(), now())",
				"admin", adminEmail, "Administrator", string(hash)).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail)
		} else {
			fmt.Println("admin user already exists; will ensure catalog")
		}

		permissions := seedCatalog()
		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE controller = ? AND action = ?", p.Controller, p.Action).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec(
					"INSERT INTO permissions (controller, action, name, title, perm_group, types, status, created_at) VALUES (?, ?, ?, ?, ?, '[1,2,3]', 1, now())",
					p.Controller, p.Action, p.Name, p.Title, p.Group).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
		}
		fmt.Printf("Permission catalog seeded (%d entries)\n", len(permissions))

		links := []struct {
			Name       string
			Link       string
			Icon       string
			Group      string
			Permission string
			GroupOrder int
			Order      int
		}{
			{"Users", "/users", "user", "Administration", "users.view", 1, 1},
			{"Roles", "/roles", "shield", "Administration", "roles.view", 1, 2},
			{"Teams", "/teams", "users", "Administration", "teams.view", 1, 3},
			{"Departments", "/departments", "building", "Administration", "departments.view", 1, 4},
			{"Permissions", "/permissions", "lock", "System", "permissions.view", 2, 1},
			{"Navigation", "/links", "menu", "System", "links.view", 2, 2},
		}
		for _, l := range links {
			var lid int64
			row := db.Raw("SELECT id FROM link_permissions WHERE link = ?", l.Link).Row()
			if err := row.Scan(&lid); err != nil {
				if err := db.Exec(
					"INSERT INTO link_permissions (name, link, icon, link_group, group_order, item_order, permission_id, status, created_at) VALUES (?, ?, ?, ?, ?, ?, (SELECT id FROM permissions WHERE name = ?), 1, now())",
					l.Name, l.Link, l.Icon, l.Group, l.GroupOrder, l.Order, l.Permission).Error; err != nil {
					log.Fatalf("failed to insert link %s: %v", l.Name, err)
				}
			}
		}
		fmt.Println("Navigation links seeded")
	},
}

func seedCatalog() []seedPermission {
	controllers := []struct {
		Controller string
		Title      string
		Group      string
	}{
		{"users", "Users", "Administration"},
		{"roles", "Roles", "Administration"},
		{"teams", "Teams", "Administration"},
		{"departments", "Departments", "Administration"},
		{"permissions", "Permissions", "System"},
		{"links", "Navigation", "System"},
	}
	actions := []struct {
		Action string
		Title  string
	}{
		{"view", "View"},
		{"viewdetail", "View detail"},
		{"add", "Add"},
		{"edit", "Edit"},
		{"delete", "Delete"},
	}

	var out []seedPermission
	for _, c := range controllers {
		for _, a := range actions {
			out = append(out, seedPermission{
				Controller: c.Controller,
				Action:     a.Action,
				Name:       fmt.Sprintf("%s.%s", c.Controller, a.Action),
				Title:      fmt.Sprintf("%s: %s", c.Title, a.Title),
				Group:      c.Group,
			})
		}
	}
	out = append(out, seedPermission{
		Controller: "utility",
		Action:     "edit",
		Name:       "utility.edit",
		Title:      "Utility: Cache reset",
		Group:      "System",
	})
	return out
}
