package order

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/event"
)

func newOrder(t Type, amount int64) *Order {
	return &Order{
		Base:      &event.Base{Symbol: "AAPL", Time: time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)},
		ID:        "1",
		Direction: common.Buy,
		Type:      t,
		Status:    Created,
		Amount:    decimal.NewFromInt(amount),
	}
}

func TestAccessors(t *testing.T) {
	t.Parallel()
	o := newOrder(Market, 10)
	assert.True(t, o.IsOrder())
	o.SetDirection(common.Sell)
	assert.Equal(t, common.Sell, o.GetDirection())
	o.SetAmount(decimal.NewFromInt(5))
	assert.True(t, o.GetAmount().Equal(decimal.NewFromInt(5)))
	o.SetID("moto")
	assert.Equal(t, "moto", o.GetID())
	assert.Equal(t, Market, o.GetType())
	assert.Equal(t, Created, o.GetStatus())
}

func TestSetStatus(t *testing.T) {
	t.Parallel()
	o := newOrder(Market, 10)
	require.NoError(t, o.SetStatus(Pending))
	require.NoError(t, o.SetStatus(PartiallyFilled))
	require.NoError(t, o.SetStatus(PartiallyFilled))
	require.NoError(t, o.SetStatus(Filled))
	assert.True(t, o.Status.IsTerminal())

	err := o.SetStatus(Pending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	o = newOrder(Market, 10)
	err = o.SetStatus(Filled)
	assert.ErrorIs(t, err, ErrInvalidTransition, "created orders must be submitted first")
}

func TestApplyFill(t *testing.T) {
	t.Parallel()
	o := newOrder(Market, 500)
	require.NoError(t, o.SetStatus(Pending))

	require.NoError(t, o.ApplyFill(decimal.Zero))
	assert.Equal(t, Pending, o.Status, "empty fill leaves the order pending")

	require.NoError(t, o.ApplyFill(decimal.NewFromInt(100)))
	assert.Equal(t, PartiallyFilled, o.Status)
	assert.True(t, o.GetRemaining().Equal(decimal.NewFromInt(400)))

	err := o.ApplyFill(decimal.NewFromInt(401))
	assert.ErrorIs(t, err, ErrInvalidOrder)

	require.NoError(t, o.ApplyFill(decimal.NewFromInt(400)))
	assert.Equal(t, Filled, o.Status)
	assert.True(t, o.GetRemaining().IsZero())

	err = o.ApplyFill(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidOrder)
	assert.False(t, o.Triggered, "only stop orders are marked triggered")

	stop := newOrder(Stop, 500)
	require.NoError(t, stop.SetStatus(Pending))
	require.NoError(t, stop.ApplyFill(decimal.Zero))
	assert.False(t, stop.Triggered)
	require.NoError(t, stop.ApplyFill(decimal.NewFromInt(100)))
	assert.True(t, stop.Triggered)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, newOrder(Market, 1).Validate())

	var nilOrder *Order
	assert.ErrorIs(t, nilOrder.Validate(), ErrInvalidOrder)

	o := newOrder(Market, 0)
	assert.ErrorIs(t, o.Validate(), ErrInvalidOrder)

	o = newOrder(Limit, 1)
	err := o.Validate()
	assert.True(t, errors.Is(err, ErrInvalidOrder))
	assert.ErrorContains(t, err, errMissingPrice.Error())
	o.Price = decimal.NewFromInt(100)
	assert.NoError(t, o.Validate())

	o = newOrder("ICEBERG", 1)
	assert.ErrorContains(t, o.Validate(), errUnknownType.Error())

	o = newOrder(Market, 1)
	o.Direction = common.DoNothing
	assert.ErrorContains(t, o.Validate(), common.ErrInvalidSide.Error())

	o = newOrder(Market, 1)
	o.Status = Cancelled
	assert.ErrorContains(t, o.Validate(), errTerminalOrder.Error())
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	var o *Order
	assert.Equal(t, "<nil order>", o.Snapshot())
	o = newOrder(Limit, 3)
	assert.Contains(t, o.Snapshot(), "AAPL")
	assert.Contains(t, o.Snapshot(), "LIMIT")
}
