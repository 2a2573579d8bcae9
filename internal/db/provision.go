// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"embed"
	"fmt"
	"path"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/toeirei/dbterm/internal/model"
	"github.com/uptrace/bun"
)

//go:embed schema
var embeddedSchema embed.FS

// SeedUsers are the accounts created by Provision.
var SeedUsers = []model.User{
	{Username: "admin", Password: "admin123", Role: model.RoleAdministrator},
	{Username: "user", Password: "pass123", Role: model.RoleUser},
}

// SeedProducts is the fixed product inventory created by Provision.
var SeedProducts = []model.Product{
	{Name: "iPhone 15 Pro", Category: "Electronics", Price: decimal.RequireFromString("999.99"), Quantity: 50, Description: "Latest Apple smartphone"},
	{Name: "Samsung Galaxy S24", Category: "Electronics", Price: decimal.RequireFromString("899.99"), Quantity: 75, Description: "Android flagship phone"},
	{Name: `MacBook Pro 16"`, Category: "Computers", Price: decimal.RequireFromString("2399.99"), Quantity: 25, Description: "Professional laptop"},
	{Name: "Dell XPS 13", Category: "Computers", Price: decimal.RequireFromString("1299.99"), Quantity: 40, Description: "Ultrabook laptop"},
	{Name: "Sony WH-1000XM5", Category: "Audio", Price: decimal.RequireFromString("349.99"), Quantity: 100, Description: "Noise cancelling headphones"},
	{Name: "Apple AirPods Pro", Category: "Audio", Price: decimal.RequireFromString("249.99"), Quantity: 150, Description: "Wireless earbuds"},
	{Name: "iPad Air", Category: "Tablets", Price: decimal.RequireFromString("599.99"), Quantity: 60, Description: "Tablet computer"},
	{Name: "Samsung Tab S9", Category: "Tablets", Price: decimal.RequireFromString("799.99"), Quantity: 45, Description: "Android tablet"},
	{Name: "Nintendo Switch", Category: "Gaming", Price: decimal.RequireFromString("299.99"), Quantity: 80, Description: "Gaming console"},
	{Name: "PlayStation 5", Category: "Gaming", Price: decimal.RequireFromString("499.99"), Quantity: 30, Description: "Next-gen console"},
}

// ProvisionStats reports what Provision created.
type ProvisionStats struct {
	Users    int
	Products int
}

// Provision drops and recreates the users and products tables and seeds them
// with the fixed data set.
func (s *Store) Provision(ctx context.Context) (ProvisionStats, error) {
	data, err := embeddedSchema.ReadFile(path.Join("schema", string(s.dialect)+".sql"))
	if err != nil {
		return ProvisionStats{}, fmt.Errorf("no schema for %s: %w", s.dialect, err)
	}
	if err := s.ExecScript(ctx, string(data)); err != nil {
		return ProvisionStats{}, fmt.Errorf("failed to create schema: %w", err)
	}

	var stats ProvisionStats
	err = s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		users := make([]UserModel, 0, len(SeedUsers))
		for _, u := range SeedUsers {
			users = append(users, UserModel{Username: u.Username, Password: u.Password, Role: u.Role})
		}
		if _, err := tx.NewInsert().Model(&users).Column("username", "password", "role").Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}

		products := make([]ProductModel, 0, len(SeedProducts))
		for _, p := range SeedProducts {
			products = append(products, ProductModel{
				Name:        p.Name,
				Category:    p.Category,
				Price:       p.Price,
				Quantity:    p.Quantity,
				Description: p.Description,
			})
		}
		if _, err := tx.NewInsert().Model(&products).Column("name", "category", "price", "quantity", "description").Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
		stats = ProvisionStats{Users: len(users), Products: len(products)}
		return nil
	})
	if err != nil {
		return ProvisionStats{}, err
	}
	dbLogf("provisioned %d users and %d products", stats.Users, stats.Products)
	return stats, nil
}

// EnsureDatabase creates the database named in a MySQL DSN when it does not
// exist yet. Other backends create their database on connect or expect it to
// be provisioned out of band.
func EnsureDatabase(ctx context.Context, dbType, dsn string) error {
	d, err := ParseDialect(dbType)
	if err != nil {
		return err
	}
	if d != DialectMySQL {
		return nil
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("invalid mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil
	}
	name := cfg.DBName
	cfg.DBName = ""

	sqlDB, err := sqlOpenFunc(d.driverName(), cfg.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to open database server: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	bdb := createBunDB(sqlDB, d)
	if _, err := bdb.NewRaw("CREATE DATABASE IF NOT EXISTS ?", bun.Ident(name)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	dbLogf("ensured database %s exists", name)
	return nil
}
