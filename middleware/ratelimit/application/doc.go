// Package application contém os casos de uso (regras de aplicação) para o
// rate limit por tenant e o limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(key) retorna uma Decision (allow/deny + limit/remaining/reset).
package application
