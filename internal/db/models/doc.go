// Package models contains the gorm model definitions of the back-office store.
package models
