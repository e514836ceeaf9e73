package gitops

import (
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	authorizationv1 "k8s.io/api/authorization/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	kubefake "k8s.io/client-go/kubernetes/fake"
	clienttesting "k8s.io/client-go/testing"
	crclient "sigs.k8s.io/controller-runtime/pkg/client"
	crfake "sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/finsight-ai/finsightctl/internal/config"
	"github.com/finsight-ai/finsightctl/internal/kube"
)

// testTimeouts are tight enough that a stuck wait fails a test in
// milliseconds instead of minutes.
func testTimeouts() *config.Timeouts {
	return &config.Timeouts{
		CSVInstall:   100 * time.Millisecond,
		Namespace:    100 * time.Millisecond,
		PodsReady:    100 * time.Millisecond,
		Identity:     100 * time.Millisecond,
		PollInterval: time.Millisecond,
		TokenTTL:     time.Minute,
	}
}

func testLogger() logrus.FieldLogger {
	logger, _ := logrustest.NewNullLogger()
	return logger
}

// allowSelfReviews makes every self subject access review pass.
func allowSelfReviews(clientset *kubefake.Clientset) {
	clientset.Fake.PrependReactor("create", "selfsubjectaccessreviews",
		func(action clienttesting.Action) (bool, runtime.Object, error) {
			review := action.(clienttesting.CreateAction).GetObject().(*authorizationv1.SelfSubjectAccessReview)
			review.Status.Allowed = true
			return true, review, nil
		})
}

// allowSubjectReviews makes every impersonated can-I check pass.
func allowSubjectReviews(clientset *kubefake.Clientset) {
	clientset.Fake.PrependReactor("create", "subjectaccessreviews",
		func(action clienttesting.Action) (bool, runtime.Object, error) {
			review := action.(clienttesting.CreateAction).GetObject().(*authorizationv1.SubjectAccessReview)
			review.Status.Allowed = true
			return true, review, nil
		})
}

func readyPod(namespace, name string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodReady, Status: corev1.ConditionTrue},
			},
		},
	}
}

func serviceAccount(namespace, name string) *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
	}
}

func namespaceObject(name string) *corev1.Namespace {
	return &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}}
}

// newResourcesFake builds a controller-runtime fake client seeded with the
// given objects.
func newResourcesFake(objects ...crclient.Object) crclient.Client {
	scheme, err := kube.Scheme()
	if err != nil {
		panic(err)
	}
	return crfake.NewClientBuilder().WithScheme(scheme).WithObjects(objects...).Build()
}
