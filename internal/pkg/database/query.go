package database

import (
	"fmt"
	"strings"
)

// Where monta cláusulas WHERE dinâmicas com placeholders posicionais ($1, $2, ...).
type Where struct {
	clauses []string
	args    []interface{}
}

// Add acrescenta uma condição; format recebe o placeholder no lugar de %s
// (ex.: "email = %s", "lower(city) = lower(%s)").
func (w *Where) Add(format string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, fmt.Sprintf("$%d", len(w.args))))
}

// String retorna " WHERE a AND b" ou "" quando não há condições.
func (w *Where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Args retorna os argumentos na ordem dos placeholders.
func (w *Where) Args() []interface{} {
	return w.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern transforma s em um padrão LIKE/ILIKE de substring, escapando curingas.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
