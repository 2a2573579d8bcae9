// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/toeirei/dbterm/internal/model"
	"github.com/uptrace/bun"
)

// UserModel maps the users table.
type UserModel struct {
	bun.BaseModel `bun:"table:users"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Username      string    `bun:"username"`
	Password      string    `bun:"password"`
	Role          string    `bun:"role"`
	CreatedAt     time.Time `bun:"created_at"`
}

// ProductModel maps the products table.
type ProductModel struct {
	bun.BaseModel `bun:"table:products"`
	ID            int64           `bun:"id,pk,autoincrement"`
	Name          string          `bun:"name"`
	Category      string          `bun:"category"`
	Price         decimal.Decimal `bun:"price"`
	Quantity      int             `bun:"quantity"`
	Description   string          `bun:"description"`
	CreatedAt     time.Time       `bun:"created_at"`
}

func userModelToModel(u UserModel) model.User {
	return model.User{ID: u.ID, Username: u.Username, Password: u.Password, Role: u.Role, CreatedAt: u.CreatedAt}
}

func productModelToModel(p ProductModel) model.Product {
	return model.Product{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func usersToModel(um []UserModel) []model.User {
	out := make([]model.User, 0, len(um))
	for _, u := range um {
		out = append(out, userModelToModel(u))
	}
	return out
}

func productsToModel(pm []ProductModel) []model.Product {
	out := make([]model.Product, 0, len(pm))
	for _, p := range pm {
		out = append(out, productModelToModel(p))
	}
	return out
}

// FindUsersByCredentials returns the users whose username and password both
// match exactly. A successful login is exactly one row.
func (s *Store) FindUsersByCredentials(ctx context.Context, username, password string) ([]model.User, error) {
	var um []UserModel
	err := s.bun.NewSelect().Model(&um).
		Where("username = ?", username).
		Where("password = ?", password).
		OrderExpr("id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return usersToModel(um), nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var um []UserModel
	if err := s.bun.NewSelect().Model(&um).OrderExpr("id").Scan(ctx); err != nil {
		return nil, err
	}
	return usersToModel(um), nil
}

// SearchUsers returns users whose username or role contains keyword.
func (s *Store) SearchUsers(ctx context.Context, keyword string) ([]model.User, error) {
	like := "%" + keyword + "%"
	var um []UserModel
	err := s.bun.NewSelect().Model(&um).
		Where("(username LIKE ? OR role LIKE ?)", like, like).
		OrderExpr("id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return usersToModel(um), nil
}

// CreateUser inserts a user. created_at is left to the column default.
func (s *Store) CreateUser(ctx context.Context, username, password, role string) error {
	u := &UserModel{Username: username, Password: password, Role: role}
	_, err := s.bun.NewInsert().Model(u).
		Column("username", "password", "role").
		Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	dbLogf("created user %q with role %q", username, role)
	return nil
}

// DeleteUser removes the user with the given id and reports how many rows
// were removed.
func (s *Store) DeleteUser(ctx context.Context, id int64) (int64, error) {
	res, err := s.bun.NewDelete().Model((*UserModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	dbLogf("deleted %d user row(s) for id %d", n, id)
	return n, nil
}

// ListProducts returns every product ordered by id.
func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	var pm []ProductModel
	if err := s.bun.NewSelect().Model(&pm).OrderExpr("id").Scan(ctx); err != nil {
		return nil, err
	}
	return productsToModel(pm), nil
}

// SearchProducts returns products whose name or category contains keyword.
func (s *Store) SearchProducts(ctx context.Context, keyword string) ([]model.Product, error) {
	like := "%" + keyword + "%"
	var pm []ProductModel
	err := s.bun.NewSelect().Model(&pm).
		Where("(name LIKE ? OR category LIKE ?)", like, like).
		OrderExpr("id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return productsToModel(pm), nil
}
