// Package repository implements MySQL persistence for users and employees.
// Sentinel errors let handlers map failures to HTTP codes without inspecting
// driver internals.
package repository

import "errors"

// ErrUsernameTaken is returned by UserRepo.Create when the username already
// exists. Handlers translate it into HTTP 409.
var ErrUsernameTaken = errors.New("username already exists")
