package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"consulting-portal/internal/config"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/infra/catalog"
	pg "consulting-portal/internal/infra/db/postgres"

	"github.com/google/uuid"
)

// seed prepares a local database: it grants a back-office role and can add a
// pending subscription so webhook deliveries have something to match.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminID := flag.String("admin", "", "user id to grant the role to")
	role := flag.String("role", string(model.RoleAdmin), "role to grant (admin|owner|client)")
	subUser := flag.String("sub-user", "", "user id owning a seeded pending subscription")
	planID := flag.String("plan", "ESSENCIAL", "catalog plan of the seeded subscription")
	gatewaySub := flag.String("gateway-sub", "", "gateway subscription id of the seeded subscription")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if *adminID == "" && *subUser == "" {
		fmt.Println("nothing to seed: pass -admin and/or -sub-user")
		return
	}

	if *adminID != "" {
		roles := pg.NewRoleRepo(pool)
		if err := roles.Grant(ctx, repository.NoTX, *adminID, model.Role(*role)); err != nil {
			log.Fatalf("grant role: %v", err)
		}
		fmt.Printf("granted %s to %s\n", *role, *adminID)
	}

	if *subUser != "" {
		plans, err := catalog.Load(cfg.Checkout.PlansFile)
		if err != nil {
			log.Fatalf("catalog: %v", err)
		}
		plan, ok := plans.Get(*planID)
		if !ok {
			log.Fatalf("plan %q not in catalog (have %v)", *planID, plans.IDs())
		}
		sub := &model.Subscription{
			ID:     uuid.NewString(),
			UserID: *subUser,
			PlanID: plan.ID,
			Status: model.SubscriptionStatusPending,
		}
		if *gatewaySub != "" {
			g := *gatewaySub
			sub.GatewaySubscriptionID = &g
		}
		if err := pg.NewSubscriptionRepo(pool).Save(ctx, repository.NoTX, sub); err != nil {
			log.Fatalf("save subscription: %v", err)
		}
		fmt.Printf("seeded subscription %s (plan=%s, user=%s)\n", sub.ID, sub.PlanID, sub.UserID)
	}
	fmt.Println("✅ Seeding complete.")
}
