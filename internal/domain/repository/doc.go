// Package repository define el modelo de dominio de usuarios y sus errores.
//
// Es la capa más baja del repo: no importa nada interno.
//
//	┌─────────────────────────────────────────────────────┐
//	│     dashboard / http controllers / cli              │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        users.Store (invariantes de IDs/emails)      │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	         ┌──────────────┴──────────────┐
//	         ▼                             ▼
//	┌─────────────────┐          ┌─────────────────┐
//	│    kv.Store     │          │   seed.Source   │
//	│ (snapshot JSON) │          │  (HTTP, 1 vez)  │
//	└─────────────────┘          └─────────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro en operaciones bloqueantes
//   - Errores de dominio están en errors.go
package repository
