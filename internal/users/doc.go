// Package users contiene el User Store: la secuencia autoritativa de usuarios
// en memoria, espejada completa en el Persistence Adapter tras cada mutación.
//
// Invariantes:
//
//	I1  los IDs son exactamente {1..N} (delete re-numera por posición)
//	I2  no hay dos usuarios con el mismo email (comparación exacta)
//	I3  cuando una mutación retorna, memoria y snapshot persistido coinciden
//
// Flujo de Load:
//
//	kv.Get(key) ──► snapshot no vacío ──► memoria
//	     │
//	     └─ ausente / null / [] ──► seed.Fetch ──► IDs 1..N ──► kv.Set ──► memoria
//	                                    │
//	                                    └─ error: log, store vacío
package users
