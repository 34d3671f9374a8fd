// Package all registers every built-in storage backend. Import it for side
// effects:
//
//	import _ "churnetl/internal/storage/all"
//
// after which storage.New accepts the kinds rest, postgres, sqlite, mssql
// and mysql.
package all

import (
	_ "churnetl/internal/storage/mssql"
	_ "churnetl/internal/storage/mysql"
	_ "churnetl/internal/storage/postgres"
	_ "churnetl/internal/storage/rest"
	_ "churnetl/internal/storage/sqlite"
)
