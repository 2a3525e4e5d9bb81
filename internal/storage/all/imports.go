// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it runs the init
// functions of each backend, which register their factories and DDL
// bootstrappers with the storage package. The available kinds are:
//
//   - "mssql"     (inventario/internal/storage/mssql)
//   - "mysql"     (inventario/internal/storage/mysql)
//   - "postgres"  (inventario/internal/storage/postgres)
//   - "snowflake" (inventario/internal/storage/snowflake)
//   - "sqlite"    (inventario/internal/storage/sqlite)
//
// Typical usage is a blank import in cmd/etl/main.go:
//
//	import _ "inventario/internal/storage/all"
//
// A binary that needs only a subset of backends can import those packages
// directly instead.
package all

import (
	_ "inventario/internal/storage/mssql"
	_ "inventario/internal/storage/mysql"
	_ "inventario/internal/storage/postgres"
	_ "inventario/internal/storage/snowflake"
	_ "inventario/internal/storage/sqlite"
)
