// Seeds a local database with sample accounts, menu items, reservations and
// top-ups so the admin console has something to show during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"canteenadmin/internal/account"
	"canteenadmin/internal/menu"
	"canteenadmin/internal/reservation"
	"canteenadmin/internal/topup"
	"canteenadmin/pkg/config"
	"canteenadmin/pkg/db"
)

func main() {
	var (
		students = flag.Int("students", 5, "number of student accounts to create")
		password = flag.String("password", "password123", "password for every seeded account")
	)
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fail("db open: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fail("hash password: %v", err)
	}

	accounts := account.NewRepository(pool)
	menus := menu.NewRepository(pool)
	reservations := reservation.NewRepository(pool)
	topups := topup.NewRepository(pool)

	items := []menu.Item{
		{Name: "Chicken Rice Bowl", Price: dec("4.50"), Category: "mains", Available: true},
		{Name: "Veggie Wrap", Price: dec("3.80"), Category: "mains", Available: true},
		{Name: "Fruit Cup", Price: dec("1.50"), Category: "sides", Available: true},
		{Name: "Iced Lemon Tea", Price: dec("1.20"), Category: "drinks", Available: true},
	}
	for i := range items {
		created, err := menus.Insert(ctx, &items[i])
		if err != nil {
			fail("insert menu item %q: %v", items[i].Name, err)
		}
		items[i] = *created
	}
	fmt.Printf("seeded %d menu items\n", len(items))

	for i := 0; i < *students; i++ {
		name := fmt.Sprintf("Student %02d", i+1)
		email := fmt.Sprintf("student%02d@example.edu", i+1)
		a, err := accounts.Create(ctx, name, email, "", string(hash), account.RoleStandard)
		if err != nil {
			if err == account.ErrEmailTaken {
				fmt.Printf("skip %s (exists)\n", email)
				continue
			}
			fail("create account %s: %v", email, err)
		}

		// First few submit a reservation and a top-up so the pending queues
		// are non-empty.
		if i < 3 {
			_, err = reservations.Create(ctx, a.ID, nextSchoolDay(), []reservation.LineItem{
				{Name: items[0].Name, Price: items[0].Price, Qty: 1},
				{Name: items[2].Name, Price: items[2].Price, Qty: 2},
			})
			if err != nil {
				fail("create reservation for %s: %v", email, err)
			}
			_, err = topups.Create(ctx, a.ID, dec("20.00"), "bank_transfer", "")
			if err != nil {
				fail("create topup for %s: %v", email, err)
			}
		}
		fmt.Printf("seeded %s\n", email)
	}
}

// nextSchoolDay returns the next weekday at midnight.
func nextSchoolDay() time.Time {
	d := time.Now().AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
