package main

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lionscafe/api/adapters/hasher"
	"github.com/lionscafe/api/adapters/idgen"
	"github.com/lionscafe/api/adapters/sqlite"
	"github.com/lionscafe/api/config"
	"github.com/lionscafe/api/domain/user"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
	Long: `Manage admin accounts for the Lion's Cafe API.

Admins can manage users, roles, and account status through the API.
The first admin must be created here since role changes require an
existing admin.

Examples:
  cafeapi admin list
  cafeapi admin create --email=owner@lionscafe.example --name="The Owner"
  cafeapi admin reset-password owner@lionscafe.example

For local dev without a config file, use --db to point at the database:
  cafeapi admin list --db cafeapi.db`,
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all admin accounts",
	RunE:  runAdminList,
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new admin account",
	Long: `Create a new admin account.

If --password is not provided, you will be prompted to enter it securely.

Examples:
  cafeapi admin create --email=owner@lionscafe.example --name="The Owner"
  cafeapi admin create --email=owner@lionscafe.example --name=Owner --password=secret`,
	RunE: runAdminCreate,
}

var adminResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Reset an admin account's password",
	Long: `Reset the password for an existing account.

If --password is not provided, you will be prompted to enter it securely.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdminResetPassword,
}

var (
	dbPath        string
	adminEmail    string
	adminName     string
	adminPassword string
)

func init() {
	rootCmd.AddCommand(adminCmd)

	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminCreateCmd)
	adminCmd.AddCommand(adminResetPasswordCmd)

	adminCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file path (bypasses config file)")

	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (required)")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "admin display name (required)")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (will prompt if not provided)")
	adminCreateCmd.MarkFlagRequired("email")
	adminCreateCmd.MarkFlagRequired("name")

	adminResetPasswordCmd.Flags().StringVar(&adminPassword, "password", "", "new password (will prompt if not provided)")
}

// openDatabase resolves the database path from --db, the config file,
// or CAFE_* environment variables, in that order.
func openDatabase() (*sqlite.DB, int, error) {
	cost := 0
	path := dbPath
	if path == "" {
		cfg, err := config.LoadWithFallback(cfgFile)
		if err != nil {
			return nil, 0, fmt.Errorf("no database: %w (or pass --db)", err)
		}
		path = cfg.Database.DSN
		cost = cfg.Auth.BcryptCost
	}

	db, err := sqlite.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("migrate: %w", err)
	}
	return db, cost, nil
}

func promptPassword() (string, error) {
	if adminPassword != "" {
		return adminPassword, nil
	}

	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Print("Confirm:  ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(pw) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(pw) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	return string(pw), nil
}

func runAdminList(cmd *cobra.Command, args []string) error {
	db, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := sqlite.NewUserStore(db).List(context.Background(), 1000, 0)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tACTIVE\tCREATED")
	found := false
	for _, u := range users {
		if u.Role != user.RoleAdmin {
			continue
		}
		found = true
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", u.Email, u.Name, u.Active, u.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
	if !found {
		fmt.Println("No admin accounts. Create one with 'cafeapi admin create'.")
	}
	return nil
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	db, cost, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	password, err := promptPassword()
	if err != nil {
		return err
	}

	hash, err := hasher.NewBcrypt(cost).Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := user.User{
		ID:            idgen.UUID{}.New(),
		Email:         adminEmail,
		Name:          adminName,
		PasswordHash:  hash,
		Role:          user.RoleAdmin,
		Active:        true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := sqlite.NewUserStore(db).Create(context.Background(), u); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("Admin %s created\n", adminEmail)
	return nil
}

func runAdminResetPassword(cmd *cobra.Command, args []string) error {
	db, cost, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewUserStore(db)
	u, err := store.GetByEmail(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	hash, err := hasher.NewBcrypt(cost).Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	if err := store.Update(context.Background(), u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	fmt.Printf("Password reset for %s\n", args[0])
	return nil
}
