package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"

	"predictionScope/internal/model"
)

// DecodeLog decodes a raw log against one event schema into canonical args.
func DecodeLog(event abi.Event, log types.Log) (map[string]any, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	if log.Topics[0] != event.ID {
		return nil, fmt.Errorf("topic0 %s does not match %s", log.Topics[0].Hex(), event.Name)
	}

	indexed := indexedArguments(event.Inputs)
	if len(log.Topics) != len(indexed)+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", len(indexed)+1, len(log.Topics))
	}

	raw := make(map[string]interface{}, len(event.Inputs))
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(raw, indexed, log.Topics[1:]); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
	}
	if err := event.Inputs.NonIndexed().UnpackIntoMap(raw, log.Data); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}

	args := make(map[string]any, len(raw))
	for key, value := range raw {
		canonical, err := canonicalValue(value)
		if err != nil {
			return nil, fmt.Errorf("arg %s: %w", key, err)
		}
		args[key] = canonical
	}

	if err := validateArgs(model.EventName(event.Name), args); err != nil {
		return nil, err
	}
	return args, nil
}

// validateArgs enforces payload invariants stored logs rely on.
func validateArgs(name model.EventName, args map[string]any) error {
	switch name {
	case model.EventSharesBought, model.EventSharesSold:
		if _, ok := args["side"].(bool); !ok {
			return fmt.Errorf("%s: side must be bool", name)
		}
		if err := nonNegative(args, "amount"); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	case model.EventWinningsClaimed:
		if err := nonNegative(args, "amount"); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	case model.EventMarketResolved:
		if _, ok := args["outcome"].(bool); !ok {
			return fmt.Errorf("%s: outcome must be bool", name)
		}
	}
	return nil
}

func nonNegative(args map[string]any, key string) error {
	raw, ok := args[key].(string)
	if !ok {
		return fmt.Errorf("%s missing", key)
	}
	val, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return fmt.Errorf("%s is not an integer: %s", key, raw)
	}
	if val.Sign() < 0 {
		return fmt.Errorf("%s is negative: %s", key, raw)
	}
	return nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
