// Package logger provee un logger Zap global con scoping por contexto.
//
// Inicialización (una vez en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "userdash"})
//	defer logger.Sync()
//
// En handlers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Add"))
//	log.Info("user added", logger.UserID(rec.ID))
//
// "dev" escribe consola con colores, "prod" JSON.
package logger
