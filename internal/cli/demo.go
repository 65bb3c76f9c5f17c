package cli

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-modeladmin/pkg/admin/sqladmin"
)

// User is the demo model served by the sql and gorm backends.
type User struct {
	ID     int64   `db:"id" gorm:"primaryKey" admin:"auto,pk"`
	Login  string  `db:"login" gorm:"size:80;not null;unique" admin:"char,max=80,unique"`
	Email  *string `db:"email" gorm:"size:254" admin:"email"`
	Role   string  `db:"role" gorm:"size:20;not null" admin:"choices=admin|editor|viewer"`
	State  *string `db:"state" gorm:"size:2" admin:"us-state"`
	Bio    *string `db:"bio" admin:"text"`
	Active bool    `db:"active" gorm:"not null"`
}

// UserDocument is the demo model served by the document backend.
type UserDocument struct {
	ID     uuid.UUID `doc:"id,pk"`
	Login  string    `doc:"login,char,max=80,unique"`
	Email  *string   `doc:"email,email"`
	Role   string    `doc:"role,choices=admin|editor|viewer"`
	State  *string   `doc:"state,us-state"`
	Bio    *string   `doc:"bio,text"`
	Active bool      `doc:"active"`
}

const usersTable = "users"

var userTable = sqladmin.MustDeclare[User](usersTable)

// createUsers holds the users DDL per sql dialect.
var createUsers = map[string]string{
	sqladmin.SQLite.Name: `CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	login VARCHAR(80) NOT NULL UNIQUE,
	email VARCHAR(254),
	role VARCHAR(20) NOT NULL,
	state VARCHAR(2),
	bio TEXT,
	active BOOLEAN NOT NULL DEFAULT FALSE
)`,
	sqladmin.Postgres.Name: `CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	login VARCHAR(80) NOT NULL UNIQUE,
	email VARCHAR(254),
	role VARCHAR(20) NOT NULL,
	state VARCHAR(2),
	bio TEXT,
	active BOOLEAN NOT NULL DEFAULT FALSE
)`,
	sqladmin.MySQL.Name: `CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	login VARCHAR(80) NOT NULL UNIQUE,
	email VARCHAR(254),
	role VARCHAR(20) NOT NULL,
	state VARCHAR(2),
	bio TEXT,
	active BOOLEAN NOT NULL DEFAULT FALSE
)`,
	sqladmin.SQLServer.Name: `IF OBJECT_ID('users', 'U') IS NULL CREATE TABLE users (
	id BIGINT IDENTITY(1,1) PRIMARY KEY,
	login NVARCHAR(80) NOT NULL UNIQUE,
	email NVARCHAR(254),
	role NVARCHAR(20) NOT NULL,
	state NVARCHAR(2),
	bio NVARCHAR(MAX),
	active BIT NOT NULL DEFAULT 0
)`,
}
