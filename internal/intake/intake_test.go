package intake

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/monitoring"
	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
	"github.com/dwarvesf/ape-bridge-backend/internal/types/environments"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

func validRequest() SubmitRequest {
	return SubmitRequest{
		WalletAddress:   "0xWallet",
		Asset:           model.AssetETH,
		Amount:          "1.25",
		FromNetwork:     model.NetworkEthereum,
		ToNetwork:       model.NetworkApechain,
		TransactionHash: "0xHash",
	}
}

func expectValidationField(err error, field string) {
	Expect(err).To(HaveOccurred())
	bridgeErr, ok := model.AsBridgeError(err)
	Expect(ok).To(BeTrue())
	Expect(bridgeErr.Kind).To(Equal(model.ErrorKindValidation))
	Expect(bridgeErr.Field).To(Equal(field))
}

var _ = Describe("Intake", func() {
	var (
		ctx      context.Context
		store    bridgetransaction.IStore
		recorder *monitoring.BusinessMetricsRecorder
		svc      *Intake
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = bridgetransaction.NewMemory()
		metrics := monitoring.NewHTTPMetrics()
		metrics.MustRegister(prometheus.NewRegistry())
		recorder = monitoring.NewBusinessMetricsRecorder(metrics)

		var err error
		svc, err = New(store, DefaultFeeTable(), map[model.Network]int{
			model.NetworkEthereum: 12,
		}, logger.New(environments.Test), recorder)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("#New", func() {
		It("should fail when a collaborator is missing", func() {
			log := logger.New(environments.Test)

			_, err := New(nil, DefaultFeeTable(), nil, log, recorder)
			Expect(err).To(HaveOccurred())
			_, err = New(store, nil, nil, log, recorder)
			Expect(err).To(HaveOccurred())
			_, err = New(store, DefaultFeeTable(), nil, nil, recorder)
			Expect(err).To(HaveOccurred())
			_, err = New(store, DefaultFeeTable(), nil, log, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("#Submit", func() {
		It("should persist a pending deposit with fee and threshold", func() {
			rec, err := svc.Submit(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.ID).To(BeNumerically(">", 0))
			Expect(rec.Status).To(Equal(model.TransactionStatusPending))
			Expect(rec.Confirmations).To(Equal(0))
			Expect(rec.RequiredConfirmations).To(Equal(12))
			Expect(rec.Type).To(Equal(model.TransactionTypeDeposit))
			Expect(rec.Fee).To(Equal("0.001"))
			Expect(rec.Timestamp.IsZero()).To(BeFalse())
		})

		It("should derive a withdrawal with the default threshold for apechain", func() {
			req := validRequest()
			req.FromNetwork, req.ToNetwork = model.NetworkApechain, model.NetworkEthereum
			req.Asset = model.AssetAPE

			rec, err := svc.Submit(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Type).To(Equal(model.TransactionTypeWithdrawal))
			Expect(rec.Fee).To(Equal("1.0"))
			Expect(rec.RequiredConfirmations).To(Equal(model.DefaultRequiredConfirmations))
		})

		DescribeTable("should report the first invalid field",
			func(mutate func(*SubmitRequest), field string) {
				req := validRequest()
				mutate(&req)

				_, err := svc.Submit(ctx, req)
				expectValidationField(err, field)

				count, err := store.Count(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(BeZero())
			},
			Entry("empty wallet beats bad amount", func(r *SubmitRequest) {
				r.WalletAddress = " "
				r.Amount = "abc"
			}, "walletAddress"),
			Entry("non-numeric amount", func(r *SubmitRequest) { r.Amount = "abc" }, "amount"),
			Entry("zero amount", func(r *SubmitRequest) { r.Amount = "0" }, "amount"),
			Entry("negative amount", func(r *SubmitRequest) { r.Amount = "-2" }, "amount"),
			Entry("unknown source network", func(r *SubmitRequest) { r.FromNetwork = "solana" }, "fromNetwork"),
			Entry("unknown destination network", func(r *SubmitRequest) { r.ToNetwork = "" }, "toNetwork"),
			Entry("same network", func(r *SubmitRequest) { r.ToNetwork = model.NetworkEthereum }, "toNetwork"),
			Entry("same network beats unknown asset", func(r *SubmitRequest) {
				r.ToNetwork = model.NetworkEthereum
				r.Asset = "doge"
			}, "toNetwork"),
			Entry("unknown asset", func(r *SubmitRequest) { r.Asset = "doge" }, "asset"),
			Entry("missing hash", func(r *SubmitRequest) { r.TransactionHash = "" }, "transactionHash"),
		)

		It("should propagate a duplicate hash as a conflict", func() {
			_, err := svc.Submit(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())

			req := validRequest()
			req.TransactionHash = "0xHASH"
			req.WalletAddress = "0xSomeoneElse"
			_, err = svc.Submit(ctx, req)
			Expect(model.IsKind(err, model.ErrorKindConflict)).To(BeTrue())

			count, err := store.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should fall back to the reverse route and then the default fee", func() {
			fees := FeeTable{
				model.AssetETH: {{From: model.NetworkApechain, To: model.NetworkEthereum}: "0.003"},
			}
			custom, err := New(store, fees, nil, logger.New(environments.Test), recorder)
			Expect(err).NotTo(HaveOccurred())

			rec, err := custom.Submit(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Fee).To(Equal("0.003"))

			req := validRequest()
			req.Asset = model.AssetAPE
			req.TransactionHash = "0xOther"
			rec, err = custom.Submit(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Fee).To(Equal(DefaultFee))
		})
	})
})
