package main

// @title POS Core API
// @version 1.0
// @description Point of sale back office: catalog, carts, restocking, reports and notifications.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Auth
// @tag.description Operator sign in

// @tag.name Products
// @tag.description Catalog management

// @tag.name Carts
// @tag.description Draft carts and checkout

// @tag.name Reports
// @tag.description Daily, range, month, year and calendar rollups
