// internal/ledger/ledger_test.go
package ledger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
)

const (
	adminWallet     = "0xaaaa00000000000000000000000000000000aaaa"
	farmWallet      = "0xffff00000000000000000000000000000000ffff"
	collectionPoint = "0xcccc00000000000000000000000000000000cccc"
	warehouseWallet = "0x1111000000000000000000000000000000001111"
	processorWallet = "0x2222000000000000000000000000000000002222"
	retailerWallet  = "0x3333000000000000000000000000000000003333"
	strangerWallet  = "0x9999000000000000000000000000000000009999"
)

type LedgerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	ledger *Ledger
}

func (suite *LedgerTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	err = db.AutoMigrate(
		&models.Actor{},
		&models.Product{},
		&models.ProductEvent{},
		&models.ProductIngredient{},
	)
	suite.Require().NoError(err)

	suite.db = db
	suite.ledger = New(db)

	suite.Require().NoError(suite.ledger.ClaimAdminRole(adminWallet, "Admin", "111"))
	suite.Require().NoError(suite.ledger.AddFarmAndProfile(adminWallet, farmWallet, "Green Acres", "222", "10.1,76.2"))
	suite.Require().NoError(suite.ledger.ClaimCollectionPointRole(collectionPoint, "Village CP", "333", "10.2,76.3"))
	suite.Require().NoError(suite.ledger.ClaimWarehouseRole(warehouseWallet, "Central Warehouse", "444", "10.3,76.4"))
	suite.Require().NoError(suite.ledger.ClaimProcessingUnitRole(processorWallet, "AgriMill", "555", "10.4,76.5"))
	suite.Require().NoError(suite.ledger.ClaimRetailerRole(retailerWallet, "FreshMart", "666", "10.5,76.6"))
}

// moveTo ships the full quantity of a product to the given wallet and
// takes delivery there, returning the shipment record.
func (suite *LedgerTestSuite) moveTo(owner string, productID uint64, destination string) *models.Product {
	product, err := suite.ledger.GetProduct(productID)
	suite.Require().NoError(err)

	child, err := suite.ledger.SplitAndShip(owner, productID, product.Quantity, destination)
	suite.Require().NoError(err)

	received, err := suite.ledger.ReceiveProduct(destination, child.ProductID)
	suite.Require().NoError(err)
	return received
}

func (suite *LedgerTestSuite) TestClaimCollisionFails() {
	err := suite.ledger.ClaimRetailerRole(warehouseWallet, "Imposter", "000", "nowhere")
	suite.ErrorIs(err, ErrAlreadyRegistered)

	profile, err := suite.ledger.GetActorProfile(warehouseWallet)
	suite.NoError(err)
	suite.Equal(models.RoleWarehouse, profile.Role)
	suite.Equal("Central Warehouse", profile.Name)
}

func (suite *LedgerTestSuite) TestAddFarmRequiresAdmin() {
	err := suite.ledger.AddFarmAndProfile(retailerWallet, strangerWallet, "Fake Farm", "000", "")
	suite.ErrorIs(err, ErrUnauthorized)

	profile, err := suite.ledger.GetActorProfile(strangerWallet)
	suite.NoError(err)
	suite.False(profile.Registered)
}

func (suite *LedgerTestSuite) TestClaimRejectsZeroAddress() {
	err := suite.ledger.ClaimRetailerRole("", "Nobody", "000", "nowhere")
	suite.ErrorIs(err, ErrUnauthorized)

	err = suite.ledger.ClaimRetailerRole(models.ZeroAddress, "Nobody", "000", "nowhere")
	suite.ErrorIs(err, ErrUnauthorized)

	err = suite.ledger.AddFarmAndProfile(adminWallet, models.ZeroAddress, "Ghost Farm", "000", "")
	suite.ErrorIs(err, ErrUnauthorized)
}

func (suite *LedgerTestSuite) TestUnknownActorProfileIsZeroValue() {
	profile, err := suite.ledger.GetActorProfile(models.ZeroAddress)
	suite.NoError(err)
	suite.False(profile.Registered)
	suite.Equal(models.RoleNone, profile.Role)
}

func (suite *LedgerTestSuite) TestCreateProductRequiresFarmRole() {
	_, err := suite.ledger.CreateProduct(warehouseWallet, "Rice", 100, "kg")
	suite.ErrorIs(err, ErrUnauthorized)

	_, err = suite.ledger.CreateProduct(strangerWallet, "Rice", 100, "kg")
	suite.ErrorIs(err, ErrUnauthorized)
}

func (suite *LedgerTestSuite) TestCreateProductRejectsZeroQuantity() {
	_, err := suite.ledger.CreateProduct(farmWallet, "Rice", 0, "kg")
	suite.ErrorIs(err, ErrInsufficientQuantity)
}

func (suite *LedgerTestSuite) TestCreateProductStartsAtFarm() {
	product, err := suite.ledger.CreateProduct(farmWallet, "Paddy Rice", 500, "kg")
	suite.Require().NoError(err)

	suite.Equal(uint64(1), product.ProductID)
	suite.Equal(models.StateAtFarm, product.CurrentState)
	suite.Equal(uint64(0), product.ParentProductID)
	suite.Equal(farmWallet, product.CurrentOwner)

	stored, err := suite.ledger.GetProduct(product.ProductID)
	suite.Require().NoError(err)
	suite.Require().Len(stored.History, 1)
	suite.Equal("Harvested", stored.History[0].Details)
	suite.Equal(models.RoleFarm, stored.History[0].ActorRole)
}

func (suite *LedgerTestSuite) TestSplitAndShipThenReceive() {
	product, err := suite.ledger.CreateProduct(farmWallet, "Paddy Rice", 500, "kg")
	suite.Require().NoError(err)

	child, err := suite.ledger.SplitAndShip(farmWallet, product.ProductID, 200, warehouseWallet)
	suite.Require().NoError(err)

	suite.Equal(uint64(2), child.ProductID)
	suite.Equal(product.ProductID, child.ParentProductID)
	suite.Equal(uint64(200), child.Quantity)
	suite.Equal(models.StateInTransit, child.CurrentState)
	suite.Equal(farmWallet, child.CurrentOwner, "custody stays with shipper until delivery")
	suite.Equal(warehouseWallet, child.DestinationAddress)

	source, err := suite.ledger.GetProduct(product.ProductID)
	suite.Require().NoError(err)
	suite.Equal(uint64(300), source.Quantity)
	suite.Equal(models.StateAtFarm, source.CurrentState)

	stored, err := suite.ledger.GetProduct(child.ProductID)
	suite.Require().NoError(err)
	suite.Require().Len(stored.History, 1)
	suite.Contains(stored.History[0].Details, "Split from #1")
	suite.Contains(stored.History[0].Details, warehouseWallet)
	suite.Equal(models.RoleFarm, stored.History[0].ActorRole, "shipper role snapshotted at event time")

	received, err := suite.ledger.ReceiveProduct(warehouseWallet, child.ProductID)
	suite.Require().NoError(err)
	suite.Equal(models.StateAtWarehouse, received.CurrentState)
	suite.Equal(warehouseWallet, received.CurrentOwner)
	suite.Empty(received.DestinationAddress)

	stored, err = suite.ledger.GetProduct(child.ProductID)
	suite.Require().NoError(err)
	suite.Require().Len(stored.History, 2)
	suite.Equal("Received by Warehouse", stored.History[1].Details)
}

func (suite *LedgerTestSuite) TestShipMoreThanAvailableLeavesSourceUnchanged() {
	product, err := suite.ledger.CreateProduct(farmWallet, "Paddy Rice", 300, "kg")
	suite.Require().NoError(err)

	_, err = suite.ledger.SplitAndShip(farmWallet, product.ProductID, 9999, warehouseWallet)
	suite.ErrorIs(err, ErrInsufficientQuantity)

	_, err = suite.ledger.SplitAndShip(farmWallet, product.ProductID, 0, warehouseWallet)
	suite.ErrorIs(err, ErrInsufficientQuantity)

	source, err := suite.ledger.GetProduct(product.ProductID)
	suite.Require().NoError(err)
	suite.Equal(uint64(300), source.Quantity)
	suite.Equal(models.StateAtFarm, source.CurrentState)

	counter, err := suite.ledger.ProductCounter()
	suite.NoError(err)
	suite.Equal(uint64(1), counter, "no shipment record on rejection")
}

func (suite *LedgerTestSuite) TestShipRequiresOwner() {
	product, err := suite.ledger.CreateProduct(farmWallet, "Wheat", 100, "kg")
	suite.Require().NoError(err)

	_, err = suite.ledger.SplitAndShip(warehouseWallet, product.ProductID, 50, processorWallet)
	suite.ErrorIs(err, ErrUnauthorized)
}

func (suite *LedgerTestSuite) TestShipToInvalidDestination() {
	product, err := suite.ledger.CreateProduct(farmWallet, "Wheat", 100, "kg")
	suite.Require().NoError(err)

	// unregistered wallet
	_, err = suite.ledger.SplitAndShip(farmWallet, product.ProductID, 50, strangerWallet)
	suite.ErrorIs(err, ErrInvalidDestination)

	// farms never receive shipments
	_, err = suite.ledger.SplitAndShip(farmWallet, product.ProductID, 50, farmWallet)
	suite.ErrorIs(err, ErrInvalidDestination)

	// admins are not custodians
	_, err = suite.ledger.SplitAndShip(farmWallet, product.ProductID, 50, adminWallet)
	suite.ErrorIs(err, ErrInvalidDestination)
}

func (suite *LedgerTestSuite) TestShipmentInTransitCannotBeShipped() {
	product, err := suite.ledger.CreateProduct(farmWallet, "Wheat", 100, "kg")
	suite.Require().NoError(err)

	child, err := suite.ledger.SplitAndShip(farmWallet, product.ProductID, 100, warehouseWallet)
	suite.Require().NoError(err)

	_, err = suite.ledger.SplitAndShip(farmWallet, child.ProductID, 50, processorWallet)
	suite.ErrorIs(err, ErrInvalidState)
}

func (suite *LedgerTestSuite) TestReceiveByWrongRecipientFails() {
	product, err := suite.ledger.CreateProduct(farmWallet, "Wheat", 100, "kg")
	suite.Require().NoError(err)

	child, err := suite.ledger.SplitAndShip(farmWallet, product.ProductID, 100, warehouseWallet)
	suite.Require().NoError(err)

	_, err = suite.ledger.ReceiveProduct(retailerWallet, child.ProductID)
	suite.ErrorIs(err, ErrUnauthorized)

	stored, err := suite.ledger.GetProduct(child.ProductID)
	suite.Require().NoError(err)
	suite.Equal(models.StateInTransit, stored.CurrentState)
	suite.Equal(warehouseWallet, stored.DestinationAddress)
}

func (suite *LedgerTestSuite) TestReceiveRequiresTransit() {
	product, err := suite.ledger.CreateProduct(farmWallet, "Wheat", 100, "kg")
	suite.Require().NoError(err)

	_, err = suite.ledger.ReceiveProduct(warehouseWallet, product.ProductID)
	suite.ErrorIs(err, ErrInvalidState)
}

func (suite *LedgerTestSuite) TestProcessProductModelsYieldExplicitly() {
	harvest, err := suite.ledger.CreateProduct(farmWallet, "Paddy Rice", 200, "kg")
	suite.Require().NoError(err)
	atMill := suite.moveTo(farmWallet, harvest.ProductID, processorWallet)

	// 150 kg of paddy becomes 100 kg of milled rice; loss is explicit.
	output, err := suite.ledger.ProcessProduct(processorWallet, atMill.ProductID, 150, "Milled Rice", 100, "kg")
	suite.Require().NoError(err)

	suite.Equal(atMill.ProductID, output.ParentProductID)
	suite.Equal(uint64(100), output.Quantity)
	suite.Equal(models.StateAtProcessingUnit, output.CurrentState)
	suite.Equal(processorWallet, output.CurrentOwner)

	source, err := suite.ledger.GetProduct(atMill.ProductID)
	suite.Require().NoError(err)
	suite.Equal(uint64(50), source.Quantity)
	suite.Equal(models.StateAtProcessingUnit, source.CurrentState, "partially consumed source stays holdable")

	stored, err := suite.ledger.GetProduct(output.ProductID)
	suite.Require().NoError(err)
	suite.Require().Len(stored.History, 1)
	suite.Contains(stored.History[0].Details, "Processed from #")
}

func (suite *LedgerTestSuite) TestProcessDrainedSourceBecomesProcessed() {
	harvest, err := suite.ledger.CreateProduct(farmWallet, "Paddy Rice", 100, "kg")
	suite.Require().NoError(err)
	atMill := suite.moveTo(farmWallet, harvest.ProductID, processorWallet)

	_, err = suite.ledger.ProcessProduct(processorWallet, atMill.ProductID, 100, "Milled Rice", 60, "kg")
	suite.Require().NoError(err)

	source, err := suite.ledger.GetProduct(atMill.ProductID)
	suite.Require().NoError(err)
	suite.Equal(uint64(0), source.Quantity)
	suite.Equal(models.StateProcessed, source.CurrentState)
}

func (suite *LedgerTestSuite) TestProcessRequiresProcessingUnitCustody() {
	harvest, err := suite.ledger.CreateProduct(farmWallet, "Paddy Rice", 100, "kg")
	suite.Require().NoError(err)

	// still at the farm
	_, err = suite.ledger.ProcessProduct(processorWallet, harvest.ProductID, 50, "Milled Rice", 30, "kg")
	suite.ErrorIs(err, ErrUnauthorized)

	atMill := suite.moveTo(farmWallet, harvest.ProductID, processorWallet)

	// processor owns it now, but a farm cannot process
	_, err = suite.ledger.ProcessProduct(farmWallet, atMill.ProductID, 50, "Milled Rice", 30, "kg")
	suite.ErrorIs(err, ErrUnauthorized)
}

func (suite *LedgerTestSuite) TestProcessWithRecipeMergesIngredients() {
	rice, err := suite.ledger.CreateProduct(farmWallet, "Rice Flour Base", 50, "kg")
	suite.Require().NoError(err)
	lentils, err := suite.ledger.CreateProduct(farmWallet, "Lentils", 30, "kg")
	suite.Require().NoError(err)

	atMillRice := suite.moveTo(farmWallet, rice.ProductID, processorWallet)
	atMillLentils := suite.moveTo(farmWallet, lentils.ProductID, processorWallet)

	blend, err := suite.ledger.ProcessWithRecipe(processorWallet,
		[]uint64{atMillRice.ProductID, atMillLentils.ProductID},
		[]uint64{50, 30},
		"Blend", 70, "kg")
	suite.Require().NoError(err)

	suite.Equal(uint64(70), blend.Quantity)
	suite.Equal(models.StateAtProcessingUnit, blend.CurrentState)
	suite.Equal(uint64(0), blend.ParentProductID, "merge lineage lives in ingredient links")

	for _, id := range []uint64{atMillRice.ProductID, atMillLentils.ProductID} {
		ingredient, err := suite.ledger.GetProduct(id)
		suite.Require().NoError(err)
		suite.Equal(uint64(0), ingredient.Quantity)
		suite.Equal(models.StateProcessed, ingredient.CurrentState)
	}

	stored, err := suite.ledger.GetProduct(blend.ProductID)
	suite.Require().NoError(err)
	suite.Require().Len(stored.Ingredients, 2)
	suite.Require().Len(stored.History, 1)
	suite.Contains(stored.History[0].Details, "Created from processing ingredients:")
	suite.Contains(stored.History[0].Details, "#3")
	suite.Contains(stored.History[0].Details, "#4")
}

func (suite *LedgerTestSuite) TestProcessWithRecipeIsAtomic() {
	rice, err := suite.ledger.CreateProduct(farmWallet, "Rice", 50, "kg")
	suite.Require().NoError(err)
	lentils, err := suite.ledger.CreateProduct(farmWallet, "Lentils", 30, "kg")
	suite.Require().NoError(err)

	atMillRice := suite.moveTo(farmWallet, rice.ProductID, processorWallet)
	atMillLentils := suite.moveTo(farmWallet, lentils.ProductID, processorWallet)

	// second ingredient over-consumed: nothing may change
	_, err = suite.ledger.ProcessWithRecipe(processorWallet,
		[]uint64{atMillRice.ProductID, atMillLentils.ProductID},
		[]uint64{50, 99},
		"Blend", 70, "kg")
	suite.ErrorIs(err, ErrInsufficientQuantity)

	first, err := suite.ledger.GetProduct(atMillRice.ProductID)
	suite.Require().NoError(err)
	suite.Equal(uint64(50), first.Quantity, "no partial effects on rejection")

	_, err = suite.ledger.ProcessWithRecipe(processorWallet, []uint64{}, []uint64{}, "Blend", 1, "kg")
	suite.Error(err)

	_, err = suite.ledger.ProcessWithRecipe(processorWallet,
		[]uint64{atMillRice.ProductID}, []uint64{10, 20}, "Blend", 1, "kg")
	suite.Error(err)
}

func (suite *LedgerTestSuite) TestSellProduct() {
	harvest, err := suite.ledger.CreateProduct(farmWallet, "Tomatoes", 80, "kg")
	suite.Require().NoError(err)
	atShop := suite.moveTo(farmWallet, harvest.ProductID, retailerWallet)

	sold, err := suite.ledger.SellProduct(retailerWallet, atShop.ProductID, 30)
	suite.Require().NoError(err)
	suite.Equal(uint64(50), sold.Quantity)
	suite.Equal(models.StateAtRetailer, sold.CurrentState, "partial sale keeps the record at the retailer")

	sold, err = suite.ledger.SellProduct(retailerWallet, atShop.ProductID, 50)
	suite.Require().NoError(err)
	suite.Equal(uint64(0), sold.Quantity)
	suite.Equal(models.StateSold, sold.CurrentState)

	stored, err := suite.ledger.GetProduct(atShop.ProductID)
	suite.Require().NoError(err)
	suite.Require().Len(stored.History, 4)
	suite.Equal("Sold 30 kg", stored.History[2].Details)
	suite.Equal("Sold 50 kg", stored.History[3].Details)

	// terminal: no further sales or shipments
	_, err = suite.ledger.SellProduct(retailerWallet, atShop.ProductID, 1)
	suite.ErrorIs(err, ErrInvalidState)
	_, err = suite.ledger.SplitAndShip(retailerWallet, atShop.ProductID, 1, warehouseWallet)
	suite.ErrorIs(err, ErrInvalidState)
}

func (suite *LedgerTestSuite) TestSellRequiresRetailerAtRetailer() {
	harvest, err := suite.ledger.CreateProduct(farmWallet, "Tomatoes", 80, "kg")
	suite.Require().NoError(err)

	_, err = suite.ledger.SellProduct(farmWallet, harvest.ProductID, 10)
	suite.ErrorIs(err, ErrUnauthorized)

	atWarehouse := suite.moveTo(farmWallet, harvest.ProductID, warehouseWallet)
	_, err = suite.ledger.SellProduct(retailerWallet, atWarehouse.ProductID, 10)
	suite.ErrorIs(err, ErrUnauthorized, "retailer does not own warehouse stock")
}

func (suite *LedgerTestSuite) TestQuantityConservationAcrossOperations() {
	harvest, err := suite.ledger.CreateProduct(farmWallet, "Paddy Rice", 500, "kg")
	suite.Require().NoError(err)

	shipped1, err := suite.ledger.SplitAndShip(farmWallet, harvest.ProductID, 200, warehouseWallet)
	suite.Require().NoError(err)
	shipped2, err := suite.ledger.SplitAndShip(farmWallet, harvest.ProductID, 150, collectionPoint)
	suite.Require().NoError(err)

	source, err := suite.ledger.GetProduct(harvest.ProductID)
	suite.Require().NoError(err)
	suite.Equal(uint64(500-200-150), source.Quantity)
	suite.Equal(source.Quantity+shipped1.Quantity+shipped2.Quantity, uint64(500))
}

func (suite *LedgerTestSuite) TestGetProductToleratesUnknownIds() {
	counter, err := suite.ledger.ProductCounter()
	suite.Require().NoError(err)
	suite.Equal(uint64(0), counter)

	product, err := suite.ledger.GetProduct(42)
	suite.NoError(err)
	suite.False(product.Exists())
}

func (suite *LedgerTestSuite) TestTraceWalksLineageToRoot() {
	harvest, err := suite.ledger.CreateProduct(farmWallet, "Paddy Rice", 200, "kg")
	suite.Require().NoError(err)
	atMill := suite.moveTo(farmWallet, harvest.ProductID, processorWallet)
	output, err := suite.ledger.ProcessProduct(processorWallet, atMill.ProductID, 200, "Milled Rice", 140, "kg")
	suite.Require().NoError(err)

	trace, err := suite.ledger.Trace(output.ProductID)
	suite.Require().NoError(err)

	suite.Require().NotEmpty(trace.Timeline)
	suite.Equal("Harvested", trace.Timeline[0].Details, "timeline starts at the root harvest")
	suite.Contains(trace.Timeline[len(trace.Timeline)-1].Details, "Processed from #")

	suite.Contains(trace.Actors, farmWallet)
	suite.Contains(trace.Actors, processorWallet)
	suite.True(trace.Actors[farmWallet].Registered)
}

func (suite *LedgerTestSuite) TestTraceRecipeIncludesSourceTimelines() {
	rice, err := suite.ledger.CreateProduct(farmWallet, "Rice", 50, "kg")
	suite.Require().NoError(err)
	lentils, err := suite.ledger.CreateProduct(farmWallet, "Lentils", 30, "kg")
	suite.Require().NoError(err)

	atMillRice := suite.moveTo(farmWallet, rice.ProductID, processorWallet)
	atMillLentils := suite.moveTo(farmWallet, lentils.ProductID, processorWallet)

	blend, err := suite.ledger.ProcessWithRecipe(processorWallet,
		[]uint64{atMillRice.ProductID, atMillLentils.ProductID},
		[]uint64{50, 30},
		"Blend", 70, "kg")
	suite.Require().NoError(err)

	trace, err := suite.ledger.Trace(blend.ProductID)
	suite.Require().NoError(err)

	suite.Require().Len(trace.SourceTimelines, 2)
	for _, timeline := range trace.SourceTimelines {
		suite.Require().NotEmpty(timeline)
		suite.Equal("Harvested", timeline[0].Details, "each ingredient traces back to its harvest")
	}

	_, err = suite.ledger.Trace(999)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *LedgerTestSuite) TestTraceShippedBlendReachesIngredientHarvests() {
	rice, err := suite.ledger.CreateProduct(farmWallet, "Rice", 50, "kg")
	suite.Require().NoError(err)
	lentils, err := suite.ledger.CreateProduct(farmWallet, "Lentils", 30, "kg")
	suite.Require().NoError(err)

	atMillRice := suite.moveTo(farmWallet, rice.ProductID, processorWallet)
	atMillLentils := suite.moveTo(farmWallet, lentils.ProductID, processorWallet)

	blend, err := suite.ledger.ProcessWithRecipe(processorWallet,
		[]uint64{atMillRice.ProductID, atMillLentils.ProductID},
		[]uint64{50, 30},
		"Blend", 70, "kg")
	suite.Require().NoError(err)

	// The shipment's parent chain is shipment -> blend; the blend's
	// ingredient links must still surface from there.
	atShop := suite.moveTo(processorWallet, blend.ProductID, retailerWallet)

	trace, err := suite.ledger.Trace(atShop.ProductID)
	suite.Require().NoError(err)

	suite.Require().NotEmpty(trace.Timeline)
	suite.Contains(trace.Timeline[0].Details, "Created from processing ingredients:")
	suite.Equal("Received by Retailer", trace.Timeline[len(trace.Timeline)-1].Details)

	suite.Require().Len(trace.SourceTimelines, 2)
	for _, timeline := range trace.SourceTimelines {
		suite.Require().NotEmpty(timeline)
		suite.Equal("Harvested", timeline[0].Details, "every merged input traces back to its harvest")
	}

	suite.Contains(trace.Actors, farmWallet)
	suite.Contains(trace.Actors, processorWallet)
	suite.Contains(trace.Actors, retailerWallet)
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
